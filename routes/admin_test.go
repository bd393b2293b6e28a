package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildAdminTestApp mounts the admin guard chain in front of a probe
// handler, so the RBAC behavior of the party can be asserted without a
// database behind the real handlers.
func buildAdminTestApp(handlerRan *bool) *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/probe", func(ctx iris.Context) {
			*handlerRan = true
			ctx.JSON(iris.Map{"userID": ctx.Values().Get("userID")})
		})
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signAdminTestToken(t *testing.T, role string, approved bool) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: 1, Role: role, Approved: approved})
	if err != nil {
		t.Fatal(err)
	}
	return string(token)
}

func TestAdminPartyRBAC(t *testing.T) {
	var handlerRan bool
	app := buildAdminTestApp(&handlerRan)

	// no token -> rejected by the verifier
	req := httptest.NewRequest(http.MethodGet, "/api/admin/probe", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
	if handlerRan {
		t.Fatal("handler must not run without a token")
	}

	// approved donor -> 403, handler never reached
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/probe", nil)
	req2.Header.Set("Authorization", "Bearer "+signAdminTestToken(t, models.RoleDonor, true))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for donor role, got %d", resp2.Code)
	}
	if handlerRan {
		t.Fatal("handler must not run for a non-admin role")
	}

	// admin -> 200, approval flag irrelevant
	req3 := httptest.NewRequest(http.MethodGet, "/api/admin/probe", nil)
	req3.Header.Set("Authorization", "Bearer "+signAdminTestToken(t, models.RoleAdmin, false))
	resp3 := httptest.NewRecorder()
	app.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp3.Code)
	}
	if !handlerRan {
		t.Fatal("handler should run for an admin")
	}
}
