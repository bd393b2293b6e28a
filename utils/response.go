package utils

import (
	"github.com/kataras/iris/v12"
)

// PageMeta describes one page of an admin listing (user directory, audit
// trail).
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSONPage writes a paginated collection. The admin dashboard tables all
// consume this envelope.
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data": data,
		"meta": PageMeta{Page: page, PerPage: perPage, Total: total},
	})
}
