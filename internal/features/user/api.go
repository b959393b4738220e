package user

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	Controller *UserController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewUserApi(controller *UserController, checker *permission.Checker, cfg *config.Config) *UserApi {
	return &UserApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *UserApi) Setup(app *fiber.App) {
	grp := app.Group("/api/users", middleware.AuthMiddleware(api.Config))

	grp.Get("/", permission.Require(api.Checker, permission.ModuleUsers, permission.ActionView), api.Controller.ListUsers)
	grp.Post("/", permission.Require(api.Checker, permission.ModuleUsers, permission.ActionCreate), api.Controller.CreateUser)
	grp.Get("/:id", permission.Require(api.Checker, permission.ModuleUsers, permission.ActionView), api.Controller.GetUser)
	grp.Put("/:id", permission.Require(api.Checker, permission.ModuleUsers, permission.ActionUpdate), api.Controller.UpdateUser)
	grp.Put("/:id/role", permission.Require(api.Checker, permission.ModuleRoles, permission.ActionUpdate), api.Controller.AssignRole)
	grp.Delete("/:id", permission.Require(api.Checker, permission.ModuleUsers, permission.ActionDelete), api.Controller.DeleteUser)
}
