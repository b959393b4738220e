package system

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/aivisualpro/devco-erp/docs"
)

type SystemApi struct {
	Controller *SystemController
	Hub        *Hub
	Config     *config.Config
}

func NewSystemApi(controller *SystemController, hub *Hub, cfg *config.Config) *SystemApi {
	return &SystemApi{Controller: controller, Hub: hub, Config: cfg}
}

func (api *SystemApi) Setup(app *fiber.App) {
	app.Get("/api/health", api.Controller.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/activity", middleware.AuthMiddleware(api.Config), websocket.New(api.Hub.Serve))
}
