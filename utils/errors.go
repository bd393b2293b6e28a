package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(status int, title string, detail string, ctx iris.Context) {
	ctx.StopWithJSON(status, iris.Map{
		"title":  title,
		"detail": detail,
	})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred.",
		ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(
		iris.StatusNotFound,
		"Not Found",
		"Resource not found.",
		ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(
		iris.StatusConflict,
		"Registration Error",
		"Email already registered.",
		ctx)
}

// HandleValidationErrors converts validator field errors into a per-field
// 400 response; other read errors become a generic bad-request.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := make([]iris.Map, 0, len(errs))
		for _, fieldErr := range errs {
			validationErrors = append(validationErrors, iris.Map{
				"field": strings.ToLower(fieldErr.Field()),
				"tag":   fieldErr.Tag(),
				"param": fieldErr.Param(),
			})
		}

		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"title":  "Validation Error",
			"fields": validationErrors,
		})
		return
	}

	CreateError(iris.StatusBadRequest, "Bad Request", "Invalid request body.", ctx)
}
