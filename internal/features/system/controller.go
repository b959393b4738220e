package system

import (
	"time"

	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/database"

	"github.com/gofiber/fiber/v2"
)

type SystemController struct {
	Config *config.Config
	DB     *database.MongodbDB
	start  time.Time
}

func NewSystemController(cfg *config.Config, db *database.MongodbDB) *SystemController {
	return &SystemController{Config: cfg, DB: db, start: time.Now()}
}

// Health godoc
// @Summary Liveness and database health
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (ctrl *SystemController) Health(c *fiber.Ctx) error {
	dbStatus := "up"
	if err := ctrl.DB.DB.Client().Ping(c.Context(), nil); err != nil {
		dbStatus = "down"
	}

	status := fiber.StatusOK
	if dbStatus == "down" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status":      dbStatus,
		"environment": ctrl.Config.Environment,
		"uptime":      time.Since(ctrl.start).Round(time.Second).String(),
	})
}
