package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/chaitu2303/FoodChain/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func TestGuardDecisionUnauthenticated(t *testing.T) {
	result := GuardDecision(false, models.RoleAdmin, true, []string{models.RoleAdmin})
	if result.Outcome != GuardLoginRedirect {
		t.Fatalf("expected login redirect, got %v", result.Outcome)
	}
	if result.RedirectTo != LoginPath {
		t.Fatalf("expected redirect to %s, got %s", LoginPath, result.RedirectTo)
	}
}

func TestGuardDecisionPendingBeforeRoleMismatch(t *testing.T) {
	// unapproved donor hitting an NGO surface must see the pending state,
	// not a redirect to the donor dashboard
	result := GuardDecision(true, models.RoleDonor, false, []string{models.RoleNGO})
	if result.Outcome != GuardPendingApproval {
		t.Fatalf("expected pending approval, got %v", result.Outcome)
	}
}

func TestGuardDecisionRoleRedirect(t *testing.T) {
	cases := []struct {
		role     string
		expected string
	}{
		{models.RoleVolunteer, "/volunteer/dashboard"},
		{models.RoleDonor, "/donor/dashboard"},
		{models.RoleNGO, "/ngo/dashboard"},
	}
	for _, tc := range cases {
		result := GuardDecision(true, tc.role, true, []string{models.RoleAdmin})
		if result.Outcome != GuardRoleRedirect {
			t.Errorf("%s: expected role redirect, got %v", tc.role, result.Outcome)
			continue
		}
		if result.RedirectTo != tc.expected {
			t.Errorf("%s: expected redirect to %s, got %s", tc.role, tc.expected, result.RedirectTo)
		}
	}
}

func TestGuardDecisionUnknownRoleRedirectsToRoot(t *testing.T) {
	result := GuardDecision(true, "super_admin", true, []string{models.RoleAdmin})
	if result.Outcome != GuardRoleRedirect {
		t.Fatalf("expected role redirect, got %v", result.Outcome)
	}
	if result.RedirectTo != "/" {
		t.Fatalf("unknown role should redirect to root, got %s", result.RedirectTo)
	}
}

func TestGuardDecisionAllow(t *testing.T) {
	if r := GuardDecision(true, models.RoleAdmin, false, []string{models.RoleAdmin}); r.Outcome != GuardAllow {
		t.Fatalf("admin should always pass, got %v", r)
	}
	if r := GuardDecision(true, models.RoleNGO, true, []string{models.RoleNGO, models.RoleAdmin}); r.Outcome != GuardAllow {
		t.Fatalf("approved NGO should pass, got %v", r)
	}
	// empty allow-list gates approval only
	if r := GuardDecision(true, models.RoleDonor, true, nil); r.Outcome != GuardAllow {
		t.Fatalf("approved donor should pass an open surface, got %v", r)
	}
}

// buildGuardedApp mounts RequireRoles behind a real verifier so the HTTP
// mapping of each guard outcome can be asserted end to end.
func buildGuardedApp(allowed ...string) *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	verifierMiddleware := verifier.Verify(func() interface{} { return new(AccessToken) })

	app.Get("/guarded", verifierMiddleware, RequireRoles(allowed...), func(ctx iris.Context) {
		ctx.JSON(iris.Map{"userID": ctx.Values().Get("userID")})
	})
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signGuardToken(t *testing.T, claims AccessToken) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(claims)
	if err != nil {
		t.Fatal(err)
	}
	return string(token)
}

func doGuarded(app *iris.Application, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestRequireRolesHTTPMapping(t *testing.T) {
	app := buildGuardedApp(models.RoleNGO)

	// no token -> verifier rejects
	if resp := doGuarded(app, ""); resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// unapproved NGO -> 403 pending_approval
	resp := doGuarded(app, signGuardToken(t, AccessToken{ID: 2, Role: models.RoleNGO, Approved: false}))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unapproved NGO, got %d", resp.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "pending_approval" {
		t.Fatalf("expected pending_approval, got %v", body["error"])
	}

	// approved volunteer on an NGO surface -> 403 role_mismatch with redirect
	resp = doGuarded(app, signGuardToken(t, AccessToken{ID: 3, Role: models.RoleVolunteer, Approved: true}))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for role mismatch, got %d", resp.Code)
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["error"] != "role_mismatch" {
		t.Fatalf("expected role_mismatch, got %v", body["error"])
	}
	if body["redirect"] != "/volunteer/dashboard" {
		t.Fatalf("expected redirect to volunteer dashboard, got %v", body["redirect"])
	}

	// approved NGO -> 200 with userID in context
	resp = doGuarded(app, signGuardToken(t, AccessToken{ID: 4, Role: models.RoleNGO, Approved: true}))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for approved NGO, got %d", resp.Code)
	}
}

func TestAdminBypassesApprovalGate(t *testing.T) {
	app := buildGuardedApp(models.RoleAdmin)

	resp := doGuarded(app, signGuardToken(t, AccessToken{ID: 1, Role: models.RoleAdmin, Approved: false}))
	if resp.Code != http.StatusOK {
		t.Fatalf("admin with unapproved flag should still pass, got %d", resp.Code)
	}
}
