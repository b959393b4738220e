package reporting

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportingApi struct {
	Controller *ReportingController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewReportingApi(controller *ReportingController, checker *permission.Checker, cfg *config.Config) *ReportingApi {
	return &ReportingApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *ReportingApi) Setup(app *fiber.App) {
	grp := app.Group("/api/reports", middleware.AuthMiddleware(api.Config))

	grp.Get("/summary", permission.Require(api.Checker, permission.ModuleReports, permission.ActionView), api.Controller.Summary)
	grp.Post("/snapshot", permission.Require(api.Checker, permission.ModuleReports, permission.ActionExport), api.Controller.Snapshot)
}
