package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func buildRegisterTestApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	app.Post("/api/user/register", Register)
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func postRegister(app *iris.Application, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

// Admin accounts are provisioned by an existing admin; the public signup
// form must reject the role before touching any storage.
func TestRegisterRejectsAdminRole(t *testing.T) {
	app := buildRegisterTestApp()

	resp := postRegister(app, `{"email":"root@foodchain.org","password":"longenough1","fullName":"Root","role":"admin"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for admin signup, got %d", resp.Code)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	app := buildRegisterTestApp()

	resp := postRegister(app, `{"email":"a@b.org","password":"longenough1","fullName":"A","role":"superuser"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.Code)
	}
}
