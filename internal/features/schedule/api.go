package schedule

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleApi struct {
	Controller *ScheduleController
	Checker    *permission.Checker
	Config     *config.Config
}

func NewScheduleApi(controller *ScheduleController, checker *permission.Checker, cfg *config.Config) *ScheduleApi {
	return &ScheduleApi{Controller: controller, Checker: checker, Config: cfg}
}

func (api *ScheduleApi) Setup(app *fiber.App) {
	grp := app.Group("/api/schedules", middleware.AuthMiddleware(api.Config))

	grp.Get("/", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionView), api.Controller.ListSchedules)
	grp.Post("/", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionCreate), api.Controller.CreateSchedule)
	grp.Get("/:id", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionView), api.Controller.GetSchedule)
	grp.Get("/:id/links", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionView), api.Controller.GetScheduleLinks)
	grp.Put("/:id", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionUpdate), api.Controller.UpdateSchedule)
	grp.Delete("/:id", permission.Require(api.Checker, permission.ModuleSchedules, permission.ActionDelete), api.Controller.DeleteSchedule)
}
