package middleware

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the signed session cookie and injects the caller's
// identity into the request context. Requests without a valid credential are
// rejected with NotAuthenticated before any permission resolution runs.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.SkipAuth {
			c.Locals(utils.UserClaimsKey, &utils.UserClaims{
				UserID: "dev-admin-id",
				Email:  "dev@devco.local",
				Role:   "Super Admin",
			})
			return c.Next()
		}

		token := c.Cookies(cfg.CookieName)
		if token == "" {
			// Fall back to a bearer header for API clients.
			authHeader := c.Get("Authorization")
			if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
				token = authHeader[7:]
			}
		}

		if token == "" {
			return apperr.NotAuthenticated("missing credential")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return apperr.NotAuthenticated("invalid or expired credential")
		}

		c.Locals(utils.UserClaimsKey, claims)
		return c.Next()
	}
}
