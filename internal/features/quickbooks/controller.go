package quickbooks

import (
	"strconv"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type QuickBooksController struct {
	Service  QuickBooksService
	OAuth    *OAuthManager
	Exporter *Exporter
}

func NewQuickBooksController(service QuickBooksService, oauth *OAuthManager, exporter *Exporter) *QuickBooksController {
	return &QuickBooksController{Service: service, OAuth: oauth, Exporter: exporter}
}

// Connect godoc
// @Summary Start the QuickBooks OAuth consent flow
// @Tags quickbooks
// @Success 302
// @Router /api/quickbooks/connect [get]
func (ctrl *QuickBooksController) Connect(c *fiber.Ctx) error {
	url, state := ctrl.OAuth.AuthURL()
	c.Cookie(&fiber.Cookie{
		Name:     "qbo_oauth_state",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.Redirect(url, fiber.StatusFound)
}

// Callback godoc
// @Summary OAuth redirect target; exchanges the code for tokens
// @Tags quickbooks
// @Produce json
// @Param code query string true "Authorization code"
// @Param realmId query string true "Company realm id"
// @Param state query string true "State echo"
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/callback [get]
func (ctrl *QuickBooksController) Callback(c *fiber.Ctx) error {
	if c.Query("state") == "" || c.Query("state") != c.Cookies("qbo_oauth_state") {
		return apperr.Validation("oauth state mismatch")
	}
	code := c.Query("code")
	realmID := c.Query("realmId")
	if code == "" || realmID == "" {
		return apperr.Validation("code and realmId are required")
	}

	if err := ctrl.OAuth.Exchange(c.Context(), code, realmID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "quickbooks connected",
	})
}

// ListProjects godoc
// @Summary List synced project financials
// @Tags quickbooks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/projects [get]
func (ctrl *QuickBooksController) ListProjects(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	docs, err := ctrl.Service.ListProjects(c.Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    docs,
	})
}

// GetProject godoc
// @Summary Get one project's financials
// @Tags quickbooks
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/projects/{id} [get]
func (ctrl *QuickBooksController) GetProject(c *fiber.Ctx) error {
	d := permission.DecisionFrom(c)
	doc, err := ctrl.Service.GetProject(c.Context(), d, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    doc,
	})
}

type manualFieldsRequest struct {
	ManualOriginalContract *float64 `json:"manual_original_contract"`
	ManualChangeOrders     *float64 `json:"manual_change_orders"`
}

// SetManualFields godoc
// @Summary Set or clear the manual contract override fields
// @Tags quickbooks
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param body body manualFieldsRequest true "Overrides; null clears"
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/projects/{id}/manual [put]
func (ctrl *QuickBooksController) SetManualFields(c *fiber.Ctx) error {
	var req manualFieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	d := permission.DecisionFrom(c)
	err := ctrl.Service.SetManualFields(c.Context(), d, c.Params("id"),
		req.ManualOriginalContract, req.ManualChangeOrders)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "manual fields updated",
	})
}

// SyncProject godoc
// @Summary Trigger an immediate sync for one project
// @Tags quickbooks
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/projects/{id}/sync [post]
func (ctrl *QuickBooksController) SyncProject(c *fiber.Ctx) error {
	if err := ctrl.Service.SyncProject(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "project synced",
	})
}

// ExportFinancials godoc
// @Summary Download project financials as a spreadsheet
// @Tags quickbooks
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /api/quickbooks/export [get]
func (ctrl *QuickBooksController) ExportFinancials(c *fiber.Ctx) error {
	buf, err := ctrl.Exporter.ExportFinancials(c.Context())
	if err != nil {
		return err
	}

	filename := "project-financials-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// ListWebhookLogs godoc
// @Summary List recent webhook deliveries
// @Tags quickbooks
// @Produce json
// @Param limit query int false "Max rows"
// @Success 200 {object} map[string]interface{}
// @Router /api/quickbooks/webhook-logs [get]
func (ctrl *QuickBooksController) ListWebhookLogs(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	logs, err := ctrl.Service.ListWebhookLogs(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
	})
}
