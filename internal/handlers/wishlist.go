// This file handles wishlist item endpoints.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caiofrota/migoculto/internal/middleware"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/security"
	"github.com/caiofrota/migoculto/internal/services"
)

// WishlistHandler handles wishlist-related HTTP requests.
type WishlistHandler struct {
	groupService *services.GroupService
	validator    *security.ValidationService
}

// NewWishlistHandler creates a new instance of WishlistHandler.
func NewWishlistHandler(groupService *services.GroupService, validator *security.ValidationService) *WishlistHandler {
	return &WishlistHandler{
		groupService: groupService,
		validator:    validator,
	}
}

// Add publishes a gift suggestion visible to the whole group.
//
// POST /api/v1/groups/:id/wishlist
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	var form models.WishlistItemForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	form.Name = h.validator.SanitizeString(form.Name)
	form.Description = h.validator.SanitizeString(form.Description)
	if err := h.validator.ValidateWishlistItemForm(form); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.groupService.AddWishlistItem(c.Context(), middleware.UserID(c), groupID, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Remove deletes one of the caller's own wishlist items.
//
// DELETE /api/v1/groups/:id/wishlist/:itemID
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	itemID, err := pathID(c, "itemID")
	if err != nil {
		return badRequest(c, "invalid item id")
	}
	if err := h.groupService.RemoveWishlistItem(c.Context(), middleware.UserID(c), groupID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
