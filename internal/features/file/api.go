package file

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FileApi struct {
	Controller *FileController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewFileApi(controller *FileController, checker *permission.Checker, cfg *config.Config) *FileApi {
	return &FileApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *FileApi) Setup(app *fiber.App) {
	grp := app.Group("/api/files", middleware.AuthMiddleware(api.Config))

	grp.Get("/", permission.Require(api.Checker, permission.ModuleFiles, permission.ActionView), api.Controller.List)
	grp.Post("/", permission.Require(api.Checker, permission.ModuleFiles, permission.ActionCreate), api.Controller.Upload)
	grp.Get("/:id/url", permission.Require(api.Checker, permission.ModuleFiles, permission.ActionView), api.Controller.GetURL)
	grp.Delete("/:id", permission.Require(api.Checker, permission.ModuleFiles, permission.ActionDelete), api.Controller.Delete)
}
