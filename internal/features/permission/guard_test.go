package permission

import (
	"net/http/httptest"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	common_models "github.com/aivisualpro/devco-erp/internal/common/models"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func guardTestApp(checker *Checker, claims *utils.UserClaims) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperr.StatusCode(err)).JSON(apperr.Body(err))
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals(utils.UserClaimsKey, claims)
		}
		return c.Next()
	})
	app.Get("/clients", Require(checker, ModuleClients, ActionView), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireDevIdentityGatedOnSkipAuth(t *testing.T) {
	devClaims := &utils.UserClaims{UserID: "dev-admin-id", Role: RoleSuperAdmin}

	t.Run("skip auth disabled rejects the dev identity", func(t *testing.T) {
		// No backing user document, so the checker denies.
		checker := NewChecker(&config.Config{SkipAuth: false},
			&fakeUserFinder{users: map[string]*common_models.User{}},
			&fakeRoleRepo{}, &fakeOverrideRepo{}, NewCache(), zap.NewNop())

		app := guardTestApp(checker, devClaims)
		resp, err := app.Test(httptest.NewRequest("GET", "/clients", nil), 2000)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
	})

	t.Run("skip auth enabled admits the dev identity", func(t *testing.T) {
		checker := NewChecker(&config.Config{SkipAuth: true},
			&fakeUserFinder{}, &fakeRoleRepo{}, &fakeOverrideRepo{}, NewCache(), zap.NewNop())

		app := guardTestApp(checker, devClaims)
		resp, err := app.Test(httptest.NewRequest("GET", "/clients", nil), 2000)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestRequireWithoutClaimsIsUnauthenticated(t *testing.T) {
	checker := NewChecker(&config.Config{}, &fakeUserFinder{}, &fakeRoleRepo{},
		&fakeOverrideRepo{}, NewCache(), zap.NewNop())

	app := guardTestApp(checker, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/clients", nil), 2000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
