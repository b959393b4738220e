package reporting

import (
	"github.com/gofiber/fiber/v2"
)

type ReportingController struct {
	Service ReportingService
}

func NewReportingController(service ReportingService) *ReportingController {
	return &ReportingController{Service: service}
}

// Summary godoc
// @Summary Financial rollup across all projects
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/reports/summary [get]
func (ctrl *ReportingController) Summary(c *fiber.Ctx) error {
	sum, err := ctrl.Service.Summary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sum,
	})
}

// Snapshot godoc
// @Summary Push a fresh snapshot to the reporting warehouse
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/reports/snapshot [post]
func (ctrl *ReportingController) Snapshot(c *fiber.Ctx) error {
	rows, err := ctrl.Service.SnapshotToMirror(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"rows":    rows,
	})
}
