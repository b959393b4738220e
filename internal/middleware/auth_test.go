package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func authTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperr.StatusCode(err)).JSON(apperr.Body(err))
		},
	})
	app.Get("/protected", AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"email": claims.Email})
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	utils.SetSecret("test-secret")
	cfg := &config.Config{CookieName: "devco_session"}

	valid, err := utils.GenerateToken(primitive.NewObjectID(), "crew@devco.local", "Field Crew")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	utils.SetSecret("a-different-secret")
	foreign, err := utils.GenerateToken(primitive.NewObjectID(), "intruder@devco.local", "Field Crew")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	utils.SetSecret("test-secret")

	tests := []struct {
		name       string
		cookie     string
		bearer     string
		wantStatus int
	}{
		{"valid cookie", valid, "", fiber.StatusOK},
		{"valid bearer header", "", valid, fiber.StatusOK},
		{"no credential", "", "", fiber.StatusUnauthorized},
		{"wrong signing key", foreign, "", fiber.StatusUnauthorized},
		{"garbage token", "not.a.jwt", "", fiber.StatusUnauthorized},
	}

	app := authTestApp(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", cfg.CookieName+"="+tt.cookie)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			resp, err := app.Test(req, 2000)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareSkipAuth(t *testing.T) {
	utils.SetSecret("test-secret")
	app := authTestApp(&config.Config{CookieName: "devco_session", SkipAuth: true})

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req, 2000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", resp.StatusCode)
	}
}
