package auth

import (
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Service AuthService
	Config  *config.Config
}

func NewAuthController(service AuthService, cfg *config.Config) *AuthController {
	return &AuthController{Service: service, Config: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	token, usr, err := ctrl.Service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     ctrl.Config.CookieName,
		Value:    token,
		Expires:  time.Now().Add(utils.TokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   ctrl.Config.Environment == "production",
	})

	usr.PasswordHash = ""
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    usr,
	})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/logout [post]
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     ctrl.Config.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

// Me godoc
// @Summary Return the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return apperr.NotAuthenticated("missing session")
	}

	usr, err := ctrl.Service.Me(c.Context(), claims.UserID)
	if err != nil {
		return err
	}
	usr.PasswordHash = ""
	return c.JSON(fiber.Map{
		"success": true,
		"data":    usr,
	})
}
