package estimate

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EstimateApi struct {
	Controller *EstimateController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewEstimateApi(controller *EstimateController, checker *permission.Checker, cfg *config.Config) *EstimateApi {
	return &EstimateApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *EstimateApi) Setup(app *fiber.App) {
	grp := app.Group("/api/estimates", middleware.AuthMiddleware(api.Config))

	grp.Get("/", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionView), api.Controller.ListEstimates)
	grp.Post("/", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionCreate), api.Controller.CreateEstimate)
	grp.Get("/:id", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionView), api.Controller.GetEstimate)
	grp.Put("/:id", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionUpdate), api.Controller.UpdateEstimate)
	grp.Post("/:id/send", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionUpdate), api.Controller.SendEstimate)
	grp.Post("/:id/approve", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionApprove), api.Controller.ApproveEstimate)
	grp.Post("/:id/decline", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionApprove), api.Controller.DeclineEstimate)
	grp.Delete("/:id", permission.Require(api.Checker, permission.ModuleEstimates, permission.ActionDelete), api.Controller.DeleteEstimate)
}
