package user

import (
	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body CreateUserRequest true "User"
// @Success 201 {object} map[string]interface{}
// @Router /api/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	usr, err := ctrl.Service.CreateUser(c.Context(), req)
	if err != nil {
		return err
	}
	usr.PasswordHash = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    usr,
	})
}

// GetUser godoc
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	usr, err := ctrl.Service.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	usr.PasswordHash = ""
	return c.JSON(fiber.Map{
		"success": true,
		"data":    usr,
	})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	users, err := ctrl.Service.ListUsers(c.Context())
	if err != nil {
		return err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// UpdateUser godoc
// @Summary Update user profile fields
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id} [put]
func (ctrl *UserController) UpdateUser(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := ctrl.Service.UpdateUser(c.Context(), c.Params("id"), updates); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "user updated",
	})
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id}/role [put]
func (ctrl *UserController) AssignRole(c *fiber.Ctx) error {
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.RoleID == "" {
		return apperr.Validation("role_id is required")
	}

	if err := ctrl.Service.AssignRole(c.Context(), c.Params("id"), req.RoleID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "role assigned",
	})
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id} [delete]
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "user deleted",
	})
}
