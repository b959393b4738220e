package permission

import (
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	controller *PermissionController
	config     *config.Config
	checker    *Checker
}

func NewPermissionApi(controller *PermissionController, config *config.Config, checker *Checker) *PermissionApi {
	return &PermissionApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *PermissionApi) Setup(app *fiber.App) {
	perms := app.Group("/api/permissions", middleware.AuthMiddleware(h.config))

	// Effective permissions for the caller need no module grant; identity is enough.
	perms.Get("/me", h.controller.Me)

	perms.Post("/overrides", Require(h.checker, ModuleRoles, ActionUpdate), h.controller.CreateOverride)
	perms.Get("/overrides/:userId", Require(h.checker, ModuleRoles, ActionView), h.controller.ListOverrides)
	perms.Delete("/overrides/:id", Require(h.checker, ModuleRoles, ActionUpdate), h.controller.DeleteOverride)
	perms.Get("/audit-logs", Require(h.checker, ModuleSettings, ActionView), h.controller.ListAuditLogs)

	roles := app.Group("/api/roles", middleware.AuthMiddleware(h.config))

	roles.Post("/", Require(h.checker, ModuleRoles, ActionCreate), h.controller.CreateRole)
	roles.Get("/", Require(h.checker, ModuleRoles, ActionView), h.controller.ListRoles)
	roles.Get("/:id", Require(h.checker, ModuleRoles, ActionView), h.controller.GetRole)
	roles.Put("/:id", Require(h.checker, ModuleRoles, ActionUpdate), h.controller.UpdateRole)
	roles.Delete("/:id", Require(h.checker, ModuleRoles, ActionDelete), h.controller.DeleteRole)
}
