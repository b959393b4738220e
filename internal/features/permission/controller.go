package permission

import (
	"strconv"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	Service PermissionService
}

func NewPermissionController(service PermissionService) *PermissionController {
	return &PermissionController{Service: service}
}

func actorID(c *fiber.Ctx) string {
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		return claims.UserID
	}
	return ""
}

// Me godoc
// @Summary Effective permissions for the caller
// @Description Returns the caller's full effective-permission structure plus a compact form for client-side quick checks
// @Tags permissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/permissions/me [get]
func (ctrl *PermissionController) Me(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return apperr.NotAuthenticated("missing credential")
	}

	eff, err := ctrl.Service.EffectiveFor(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"permissions": eff,
		"compact":     eff.Compact(),
	})
}

// CreateRole godoc
// @Summary Create role
// @Tags roles
// @Accept json
// @Produce json
// @Param role body Role true "Role definition"
// @Success 201 {object} Role
// @Router /api/roles [post]
func (ctrl *PermissionController) CreateRole(c *fiber.Ctx) error {
	var role Role
	if err := c.BodyParser(&role); err != nil {
		return apperr.Validation("invalid request body")
	}

	created, err := ctrl.Service.CreateRole(c.UserContext(), actorID(c), &role)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListRoles godoc
// @Summary List roles
// @Tags roles
// @Produce json
// @Success 200 {array} Role
// @Router /api/roles [get]
func (ctrl *PermissionController) ListRoles(c *fiber.Ctx) error {
	roles, err := ctrl.Service.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": roles})
}

// GetRole godoc
// @Summary Get role
// @Tags roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} Role
// @Router /api/roles/{id} [get]
func (ctrl *PermissionController) GetRole(c *fiber.Ctx) error {
	role, err := ctrl.Service.GetRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(role)
}

// UpdateRole godoc
// @Summary Update role
// @Tags roles
// @Accept json
// @Param id path string true "Role ID"
// @Param role body Role true "Role definition"
// @Success 200 {object} map[string]interface{}
// @Router /api/roles/{id} [put]
func (ctrl *PermissionController) UpdateRole(c *fiber.Ctx) error {
	var role Role
	if err := c.BodyParser(&role); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := ctrl.Service.UpdateRole(c.UserContext(), actorID(c), c.Params("id"), &role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role updated successfully"})
}

// DeleteRole godoc
// @Summary Delete role
// @Description Rejected while any user still references the role
// @Tags roles
// @Param id path string true "Role ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/roles/{id} [delete]
func (ctrl *PermissionController) DeleteRole(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRole(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role deleted successfully"})
}

// CreateOverride godoc
// @Summary Create a per-user permission override
// @Tags permissions
// @Accept json
// @Produce json
// @Param override body UserPermissionOverride true "Override patch"
// @Success 201 {object} UserPermissionOverride
// @Router /api/permissions/overrides [post]
func (ctrl *PermissionController) CreateOverride(c *fiber.Ctx) error {
	var override UserPermissionOverride
	if err := c.BodyParser(&override); err != nil {
		return apperr.Validation("invalid request body")
	}

	created, err := ctrl.Service.CreateOverride(c.UserContext(), actorID(c), &override)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListOverrides godoc
// @Summary List a user's permission overrides
// @Tags permissions
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} UserPermissionOverride
// @Router /api/permissions/overrides/{userId} [get]
func (ctrl *PermissionController) ListOverrides(c *fiber.Ctx) error {
	overrides, err := ctrl.Service.ListOverrides(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overrides})
}

// DeleteOverride godoc
// @Summary Delete a permission override
// @Tags permissions
// @Param id path string true "Override ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/permissions/overrides/{id} [delete]
func (ctrl *PermissionController) DeleteOverride(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteOverride(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Override deleted successfully"})
}

// ListAuditLogs godoc
// @Summary List permission audit logs
// @Tags permissions
// @Produce json
// @Param user_id query string false "Filter by target user"
// @Param role_id query string false "Filter by role"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} PermissionAuditLog
// @Router /api/permissions/audit-logs [get]
func (ctrl *PermissionController) ListAuditLogs(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset", "0"), 10, 64)

	filters := map[string]interface{}{
		"user_id": c.Query("user_id"),
		"role_id": c.Query("role_id"),
	}

	entries, err := ctrl.Service.ListAuditLogs(c.UserContext(), filters, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
