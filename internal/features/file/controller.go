package file

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type FileController struct {
	Service FileService
}

func NewFileController(service FileService) *FileController {
	return &FileController{Service: service}
}

// Upload godoc
// @Summary Upload a file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param category formData string false "jobticket|safetyform|vendordoc|general"
// @Param related_id formData string false "Owning record id"
// @Success 201 {object} map[string]interface{}
// @Router /api/files [post]
func (ctrl *FileController) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}

	d := permission.DecisionFrom(c)
	rec, err := ctrl.Service.Upload(c.Context(), d, header, c.FormValue("category"), c.FormValue("related_id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    rec,
	})
}

// GetURL godoc
// @Summary Get a time-limited download URL
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/files/{id}/url [get]
func (ctrl *FileController) GetURL(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	url, err := ctrl.Service.GetURL(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}

// List godoc
// @Summary List file records
// @Tags files
// @Produce json
// @Param category query string false "Category filter"
// @Param related_id query string false "Owning record filter"
// @Success 200 {object} map[string]interface{}
// @Router /api/files [get]
func (ctrl *FileController) List(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	files, err := ctrl.Service.List(c.Context(), d, c.Query("category"), c.Query("related_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
	})
}

// Delete godoc
// @Summary Delete a file and its stored object
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/files/{id} [delete]
func (ctrl *FileController) Delete(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	if err := ctrl.Service.Delete(c.Context(), d, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "file deleted",
	})
}
