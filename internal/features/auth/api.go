package auth

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	Controller *AuthController
	Config     *config.Config
}

func NewAuthApi(controller *AuthController, cfg *config.Config) *AuthApi {
	return &AuthApi{Controller: controller, Config: cfg}
}

func (api *AuthApi) Setup(app *fiber.App) {
	grp := app.Group("/api/auth")

	grp.Post("/login", api.Controller.Login)
	grp.Post("/logout", api.Controller.Logout)
	grp.Get("/me", middleware.AuthMiddleware(api.Config), api.Controller.Me)
}
