package handlers

import (
	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EmailHandler handles the administrator e-mail utilities
type EmailHandler struct {
	mailService services.MailUseCase
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(mailService services.MailUseCase) *EmailHandler {
	return &EmailHandler{mailService: mailService}
}

// SendEmail handles sending a custom e-mail (Admin only)
// @Summary Send e-mail
// @Tags Email
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.SendEmailInput true "Message"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /send-email [post]
func (h *EmailHandler) SendEmail(c *fiber.Ctx) error {
	var req services.SendEmailInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.mailService.SendCustom(c.Context(), &req); err != nil {
		return response.FromError(c, err)
	}

	return response.JSON(c, fiber.Map{"message": "Email sent successfully!"})
}

// TestEmail handles the SMTP self-test (Admin only)
// @Summary Send test e-mail
// @Tags Email
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /test-email [get]
func (h *EmailHandler) TestEmail(c *fiber.Ctx) error {
	if err := h.mailService.SendTest(c.Context()); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Test email sent successfully!", nil)
}
