package handlers

import (
	"it-asset-management/internal/adapters/http/middleware"
	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService services.UserUseCase
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserUseCase) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.User
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, users)
}

// GetUser handles getting a user by ID (Admin only)
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, user)
}

// CreateUser handles creating a new user (Admin only)
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.Response
// @Router /api/users/create [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if _, err := h.userService.Create(c.Context(), &req); err != nil {
		return response.FromError(c, err)
	}

	return response.JSON(c, fiber.Map{"msg": "User created successfully"})
}

// UpdateUser handles updating a user (Admin only)
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.JSON(c, fiber.Map{
		"msg":  "User updated successfully",
		"user": user,
	})
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.userService.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"msg": "User deleted"})
}
