package permission

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// Require guards a route with one (module, action) pair. The set of these
// declarations across the feature api files is the static routing table
// mapping inbound routes to permission checks. Runs after AuthMiddleware;
// a request that reaches it without claims is rejected as unauthenticated,
// which is distinct from the PermissionDenied a known caller receives.
//
// Store errors during resolution fail closed: the caller gets a deny, never
// an accidental allow.
func Require(checker *Checker, module ModuleKey, action ActionKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return apperr.NotAuthenticated("missing credential")
		}

		if checker.devBypass && claims.UserID == "dev-admin-id" && claims.Role == RoleSuperAdmin {
			// SKIP_AUTH development identity has no backing user document.
			c.Locals(DecisionKey, Decision{
				Allowed: true,
				Scope:   ScopeAll,
				UserID:  claims.UserID,
			})
			return c.Next()
		}

		decision, err := checker.Check(c.UserContext(), claims.UserID, module, action)
		if err != nil || !decision.Allowed {
			return apperr.PermissionDenied(string(module), string(action), "insufficient permissions")
		}

		c.Locals(DecisionKey, decision)
		return c.Next()
	}
}
