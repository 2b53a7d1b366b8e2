package handlers

import (
	"it-asset-management/internal/core/services"
	"it-asset-management/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EquipmentHandler handles asset inventory endpoints
type EquipmentHandler struct {
	equipmentService services.EquipmentUseCase
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(equipmentService services.EquipmentUseCase) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService: equipmentService,
	}
}

// List handles listing equipment
// @Summary List equipment
// @Description Non-deleted equipment, newest first
// @Tags Equipment
// @Produce json
// @Success 200 {array} models.Equipment
// @Router /api/equipment [get]
func (h *EquipmentHandler) List(c *fiber.Ctx) error {
	items, err := h.equipmentService.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, items)
}

// Summary handles the dashboard counters
// @Summary Equipment summary
// @Tags Equipment
// @Produce json
// @Success 200 {object} models.EquipmentSummary
// @Router /api/equipment/summary [get]
func (h *EquipmentHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.equipmentService.Summary(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, summary)
}

// CountByCategory handles counting equipment in a category
// @Summary Count equipment by category
// @Tags Equipment
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} map[string]int64
// @Router /api/equipment/count/{category} [get]
func (h *EquipmentHandler) CountByCategory(c *fiber.Ctx) error {
	count, err := h.equipmentService.CountByCategory(c.Context(), c.Params("category"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"count": count})
}

// Removed handles listing equipment in Removed status
// @Summary List removed equipment
// @Tags Equipment
// @Produce json
// @Success 200 {array} models.Equipment
// @Router /api/equipment/removed [get]
func (h *EquipmentHandler) Removed(c *fiber.Ctx) error {
	items, err := h.equipmentService.ListRemoved(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, items)
}

// Get handles getting one equipment
// @Summary Get equipment by ID
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} models.Equipment
// @Failure 404 {object} response.Response
// @Router /api/equipment/{id} [get]
func (h *EquipmentHandler) Get(c *fiber.Ctx) error {
	item, err := h.equipmentService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, item)
}

// Create handles creating equipment (Admin or Editor)
// @Summary Create equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body services.CreateEquipmentInput true "Equipment data"
// @Success 201 {object} models.Equipment
// @Failure 400 {object} response.Response
// @Router /api/equipment [post]
func (h *EquipmentHandler) Create(c *fiber.Ctx) error {
	var req services.CreateEquipmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.equipmentService.Create(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, item)
}

// Update handles updating equipment (Admin or Editor).
// Assigning the equipment to a new holder queues an acknowledgement e-mail.
// @Summary Update equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Equipment ID"
// @Param body body services.UpdateEquipmentInput true "Fields to update"
// @Success 200 {object} models.Equipment
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/equipment/{id} [put]
func (h *EquipmentHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateEquipmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.equipmentService.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.JSON(c, item)
}

// Delete handles soft-deleting equipment (Admin only)
// @Summary Delete equipment
// @Tags Equipment
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Equipment ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} response.Response
// @Router /api/equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.equipmentService.SoftDelete(c.Context(), c.Params("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.JSON(c, fiber.Map{"message": "Equipment marked as deleted successfully"})
}
