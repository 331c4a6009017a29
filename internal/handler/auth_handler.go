package handler

import (
	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/dto"
	"mission-desk/internal/middleware"
	"mission-desk/internal/service"
	"mission-desk/internal/validation"
)

type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, validator: validator}
}

// Login exchanges participant credentials for a bearer token.
// @Summary Participant login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /service2/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// Logout revokes the caller's token.
// @Summary Participant logout
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /service2/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Logged out"})
}
