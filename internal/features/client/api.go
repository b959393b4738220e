package client

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ClientApi struct {
	Controller *ClientController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewClientApi(controller *ClientController, checker *permission.Checker, cfg *config.Config) *ClientApi {
	return &ClientApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *ClientApi) Setup(app *fiber.App) {
	grp := app.Group("/api/clients", middleware.AuthMiddleware(api.Config))

	grp.Get("/", permission.Require(api.Checker, permission.ModuleClients, permission.ActionView), api.Controller.ListClients)
	grp.Post("/", permission.Require(api.Checker, permission.ModuleClients, permission.ActionCreate), api.Controller.CreateClient)
	grp.Get("/:id", permission.Require(api.Checker, permission.ModuleClients, permission.ActionView), api.Controller.GetClient)
	grp.Put("/:id", permission.Require(api.Checker, permission.ModuleClients, permission.ActionUpdate), api.Controller.UpdateClient)
	grp.Delete("/:id", permission.Require(api.Checker, permission.ModuleClients, permission.ActionDelete), api.Controller.DeleteClient)
}
