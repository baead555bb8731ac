// This file handles message posting inside a group.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caiofrota/migoculto/internal/middleware"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/security"
	"github.com/caiofrota/migoculto/internal/services"
)

// MessageHandler handles message-related HTTP requests.
type MessageHandler struct {
	messageService *services.MessageService
	validator      *security.ValidationService
}

// NewMessageHandler creates a new instance of MessageHandler.
func NewMessageHandler(messageService *services.MessageService, validator *security.ValidationService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validator:      validator,
	}
}

// Post sends a message into the group. With no receiver the message is
// public; with a receiver it lands in the appropriate anonymous scope.
//
// POST /api/v1/groups/:id/messages
func (h *MessageHandler) Post(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	var form models.PostMessageForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	form.Content = h.validator.SanitizeString(form.Content)
	if err := h.validator.ValidateMessageContent(form.Content); err != nil {
		return badRequest(c, err.Error())
	}

	message, err := h.messageService.Post(c.Context(), middleware.UserID(c), groupID, form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
