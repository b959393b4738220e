package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/aivisualpro/devco-erp/internal/config"

	"github.com/gofiber/fiber/v2"
)

func corsTestApp() *fiber.App {
	cfg := &config.Config{CORSOrigins: "http://localhost:3000, https://app.devco.example"}
	app := fiber.New()
	app.Use(CORSMiddleware(cfg))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	app := corsTestApp()

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://app.devco.example")
	resp, err := app.Test(req, 2000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.devco.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the listed origin", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	app := corsTestApp()

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := app.Test(req, 2000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q for unlisted origin, want empty", got)
	}
}
