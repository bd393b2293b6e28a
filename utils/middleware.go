package utils

import (
	"log"

	"github.com/chaitu2303/FoodChain/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

// DashboardPaths maps each role to its own dashboard surface. Unknown
// roles fall back to the site root.
var DashboardPaths = map[string]string{
	models.RoleAdmin:     "/admin/dashboard",
	models.RoleNGO:       "/ngo/dashboard",
	models.RoleDonor:     "/donor/dashboard",
	models.RoleVolunteer: "/volunteer/dashboard",
}

const LoginPath = "/login"

type GuardOutcome int

const (
	GuardAllow GuardOutcome = iota
	GuardLoginRedirect
	GuardPendingApproval
	GuardRoleRedirect
)

type GuardResult struct {
	Outcome    GuardOutcome
	RedirectTo string
}

// GuardDecision gates access to a role-scoped surface. Evaluation order
// matters: the approval gate comes before role matching, so an unapproved
// user with a mismatched role sees the pending state instead of being
// silently bounced to another dashboard.
func GuardDecision(authenticated bool, role string, approved bool, allowedRoles []string) GuardResult {
	if !authenticated {
		return GuardResult{Outcome: GuardLoginRedirect, RedirectTo: LoginPath}
	}

	isAdmin := role == models.RoleAdmin

	if !isAdmin && !models.IsApproved(role, approved) {
		return GuardResult{Outcome: GuardPendingApproval}
	}

	if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, role) {
		target, ok := DashboardPaths[role]
		if !ok {
			target = "/"
		}
		return GuardResult{Outcome: GuardRoleRedirect, RedirectTo: target}
	}

	return GuardResult{Outcome: GuardAllow}
}

// RequireRoles enforces the guard decision for a set of allowed roles.
// Runs after the access-token verifier.
func RequireRoles(allowedRoles ...string) iris.Handler {
	return func(ctx iris.Context) {
		claims, ok := jwt.Get(ctx).(*AccessToken)
		if !ok || claims == nil {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{
				"error":    "unauthenticated",
				"redirect": LoginPath,
				"from":     ctx.Path(),
			})
			return
		}

		result := GuardDecision(true, claims.Role, claims.Approved, allowedRoles)
		switch result.Outcome {
		case GuardPendingApproval:
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{
				"error":   "pending_approval",
				"message": "Your account is awaiting administrator approval.",
			})
		case GuardRoleRedirect:
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{
				"error":    "role_mismatch",
				"redirect": result.RedirectTo,
			})
		default:
			ctx.Values().Set("userID", claims.ID)
			ctx.Next()
		}
	}
}

// RequireApproved gates any authenticated surface behind the approval flag
// without restricting the role.
func RequireApproved(ctx iris.Context) {
	RequireRoles()(ctx)
}

// AdminOnlyMiddleware ensures the requester has the admin role
func AdminOnlyMiddleware(ctx iris.Context) {
	RequireRoles(models.RoleAdmin)(ctx)
}

// UserIDFromTokenMiddleware extracts user ID from JWT token and stores it in context
// Use this for routes that don't have {id} parameter in URL
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// LogRoleFallback records that a role was resolved from signup metadata
// because the assignment row was not materialized yet.
func LogRoleFallback(userID uint, role string) {
	log.Printf("role fallback: user %d resolved role %q from signup metadata", userID, role)
}
