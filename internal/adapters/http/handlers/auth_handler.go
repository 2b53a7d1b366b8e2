package handlers

import (
	"strings"

	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles login and password reset endpoints
type AuthHandler struct {
	authService  services.AuthUseCase
	resetService services.PasswordResetUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthUseCase, resetService services.PasswordResetUseCase) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
	}
}

// ForgotPasswordRequest represents forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password and return a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} services.LoginResponse
// @Failure 400 {object} response.Response
// @Router /api/users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.JSON(c, result)
}

// ForgotPassword handles password reset requests
// @Summary Request password reset
// @Description E-mail a single-use password reset link
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.resetService.RequestReset(c.Context(), req.Email); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Password reset link sent to your email successfully.", nil)
}

// ResetPassword handles password reset with a token
// @Summary Reset password
// @Description Redeem a reset token and set a new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.ResetPasswordInput true "Reset data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.resetService.ResetPassword(c.Context(), &req); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Password reset successfully!", nil)
}
