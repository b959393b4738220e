package schedule

import (
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Service ScheduleService
}

func NewScheduleController(service ScheduleService) *ScheduleController {
	return &ScheduleController{Service: service}
}

// CreateSchedule godoc
// @Summary Create a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param body body Schedule true "Schedule"
// @Success 201 {object} map[string]interface{}
// @Router /api/schedules [post]
func (ctrl *ScheduleController) CreateSchedule(c *fiber.Ctx) error {
	var body Schedule
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.CreateSchedule(c.Context(), d, &body); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    body,
	})
}

// GetSchedule godoc
// @Summary Get a schedule by id
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/schedules/{id} [get]
func (ctrl *ScheduleController) GetSchedule(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	doc, err := ctrl.Service.GetSchedule(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    doc,
	})
}

// GetScheduleLinks godoc
// @Summary Resolve a schedule's client and estimate linkage
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/schedules/{id}/links [get]
func (ctrl *ScheduleController) GetScheduleLinks(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	links, err := ctrl.Service.GetScheduleLinks(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    links,
	})
}

// ListSchedules godoc
// @Summary List schedules, optionally within a date window
// @Tags schedules
// @Produce json
// @Param from query string false "RFC3339 window start"
// @Param to query string false "RFC3339 window end"
// @Success 200 {object} map[string]interface{}
// @Router /api/schedules [get]
func (ctrl *ScheduleController) ListSchedules(c *fiber.Ctx) error {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperr.Validation("from must be RFC3339")
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return apperr.Validation("to must be RFC3339")
		}
		to = &t
	}

	d := permission.DecisionFrom(c)
	docs, err := ctrl.Service.ListSchedules(c.Context(), d, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
	})
}

// UpdateSchedule godoc
// @Summary Update a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/schedules/{id} [put]
func (ctrl *ScheduleController) UpdateSchedule(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.UpdateSchedule(c.Context(), d, c.Params("id"), updates); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "schedule updated",
	})
}

// DeleteSchedule godoc
// @Summary Delete a schedule
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/schedules/{id} [delete]
func (ctrl *ScheduleController) DeleteSchedule(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.DeleteSchedule(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "schedule deleted",
	})
}
