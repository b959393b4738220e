package client

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type ClientController struct {
	Service ClientService
}

func NewClientController(service ClientService) *ClientController {
	return &ClientController{Service: service}
}

// CreateClient godoc
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param body body Client true "Client"
// @Success 201 {object} map[string]interface{}
// @Router /api/clients [post]
func (ctrl *ClientController) CreateClient(c *fiber.Ctx) error {
	var body Client
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.CreateClient(c.Context(), d, &body); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    body,
	})
}

// GetClient godoc
// @Summary Get a client by id
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/clients/{id} [get]
func (ctrl *ClientController) GetClient(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	doc, err := ctrl.Service.GetClient(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    doc,
	})
}

// ListClients godoc
// @Summary List clients visible in the caller's data scope
// @Tags clients
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/clients [get]
func (ctrl *ClientController) ListClients(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	docs, err := ctrl.Service.ListClients(c.Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
	})
}

// UpdateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/clients/{id} [put]
func (ctrl *ClientController) UpdateClient(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.UpdateClient(c.Context(), d, c.Params("id"), updates); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "client updated",
	})
}

// DeleteClient godoc
// @Summary Delete a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/clients/{id} [delete]
func (ctrl *ClientController) DeleteClient(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.DeleteClient(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "client deleted",
	})
}
