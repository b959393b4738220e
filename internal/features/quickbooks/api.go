package quickbooks

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/permission"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type QuickBooksApi struct {
	Controller *QuickBooksController
	Webhook    *WebhookProcessor
	Checker    *permission.Checker
	Config     *config.Config
}

func NewQuickBooksApi(controller *QuickBooksController, webhook *WebhookProcessor, checker *permission.Checker, cfg *config.Config) *QuickBooksApi {
	return &QuickBooksApi{Controller: controller, Webhook: webhook, Checker: checker, Config: cfg}
}

func (api *QuickBooksApi) Setup(app *fiber.App) {
	// The webhook authenticates via HMAC, not a session.
	app.Post("/api/quickbooks/webhook", api.Webhook.Handle)

	grp := app.Group("/api/quickbooks", middleware.AuthMiddleware(api.Config))

	grp.Get("/connect", permission.Require(api.Checker, permission.ModuleSettings, permission.ActionUpdate), api.Controller.Connect)
	grp.Get("/callback", permission.Require(api.Checker, permission.ModuleSettings, permission.ActionUpdate), api.Controller.Callback)

	grp.Get("/projects", permission.Require(api.Checker, permission.ModuleFinancials, permission.ActionView), api.Controller.ListProjects)
	grp.Get("/projects/:id", permission.Require(api.Checker, permission.ModuleFinancials, permission.ActionView), api.Controller.GetProject)
	grp.Put("/projects/:id/manual", permission.Require(api.Checker, permission.ModuleFinancials, permission.ActionUpdate), api.Controller.SetManualFields)
	grp.Post("/projects/:id/sync", permission.Require(api.Checker, permission.ModuleFinancials, permission.ActionUpdate), api.Controller.SyncProject)
	grp.Get("/export", permission.Require(api.Checker, permission.ModuleFinancials, permission.ActionExport), api.Controller.ExportFinancials)
	grp.Get("/webhook-logs", permission.Require(api.Checker, permission.ModuleSettings, permission.ActionView), api.Controller.ListWebhookLogs)
}
