package estimate

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type EstimateController struct {
	Service EstimateService
}

func NewEstimateController(service EstimateService) *EstimateController {
	return &EstimateController{Service: service}
}

// CreateEstimate godoc
// @Summary Create an estimate
// @Tags estimates
// @Accept json
// @Produce json
// @Param body body Estimate true "Estimate"
// @Success 201 {object} map[string]interface{}
// @Router /api/estimates [post]
func (ctrl *EstimateController) CreateEstimate(c *fiber.Ctx) error {
	var body Estimate
	if err := c.BodyParser(&body); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.CreateEstimate(c.Context(), d, &body); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    body,
	})
}

// SendEstimate godoc
// @Summary Email an estimate to the client and mark it sent
// @Tags estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id}/send [post]
func (ctrl *EstimateController) SendEstimate(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.SendEstimate(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetEstimate godoc
// @Summary Get an estimate by id
// @Tags estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id} [get]
func (ctrl *EstimateController) GetEstimate(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	doc, err := ctrl.Service.GetEstimate(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    doc,
	})
}

// ListEstimates godoc
// @Summary List estimates visible in the caller's data scope
// @Tags estimates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates [get]
func (ctrl *EstimateController) ListEstimates(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	docs, err := ctrl.Service.ListEstimates(c.Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
	})
}

// UpdateEstimate godoc
// @Summary Update an estimate
// @Tags estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id} [put]
func (ctrl *EstimateController) UpdateEstimate(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	if err := ctrl.Service.UpdateEstimate(c.Context(), d, c.Params("id"), updates); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "estimate updated",
	})
}

// ApproveEstimate godoc
// @Summary Approve an estimate
// @Tags estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id}/approve [post]
func (ctrl *EstimateController) ApproveEstimate(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.ApproveEstimate(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "estimate approved",
	})
}

// DeclineEstimate godoc
// @Summary Decline an estimate
// @Tags estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id}/decline [post]
func (ctrl *EstimateController) DeclineEstimate(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.DeclineEstimate(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "estimate declined",
	})
}

// DeleteEstimate godoc
// @Summary Delete an estimate
// @Tags estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/estimates/{id} [delete]
func (ctrl *EstimateController) DeleteEstimate(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.DeleteEstimate(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "estimate deleted",
	})
}
