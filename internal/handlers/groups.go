// This file handles the group lifecycle endpoints: creation, membership,
// the draw and the close.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/caiofrota/migoculto/internal/middleware"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/security"
	"github.com/caiofrota/migoculto/internal/services"
)

// GroupHandler handles group-related HTTP requests.
type GroupHandler struct {
	groupService *services.GroupService
	validator    *security.ValidationService
}

// NewGroupHandler creates a new instance of GroupHandler.
func NewGroupHandler(groupService *services.GroupService, validator *security.ValidationService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		validator:    validator,
	}
}

// Create creates a new group owned by the authenticated user.
//
// POST /api/v1/groups
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var form models.CreateGroupForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	form.Name = h.validator.SanitizeString(form.Name)
	form.Description = h.validator.SanitizeString(form.Description)
	if err := h.validator.ValidateCreateGroupForm(form); err != nil {
		return badRequest(c, err.Error())
	}

	group, err := h.groupService.CreateGroup(c.Context(), middleware.UserID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// List returns the viewer's groups as per-viewer projections, newest
// activity first.
//
// GET /api/v1/groups
func (h *GroupHandler) List(c *fiber.Ctx) error {
	views, err := h.groupService.ListGroupViews(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if views == nil {
		views = []*models.GroupView{}
	}
	return c.JSON(views)
}

// Get returns the full projection of one group for the viewer.
//
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	view, err := h.groupService.GetGroupView(c.Context(), middleware.UserID(c), groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// Join adds the authenticated user to a group by its shared password.
//
// POST /api/v1/groups/:id/join
func (h *GroupHandler) Join(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	var form models.JoinGroupForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}

	group, err := h.groupService.Join(c.Context(), middleware.UserID(c), groupID, form.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// JoinByCode adds the authenticated user via an invite code, typically
// scanned from a QR code. The code is the credential.
//
// POST /api/v1/groups/join
func (h *GroupHandler) JoinByCode(c *fiber.Ctx) error {
	var body struct {
		JoinCode string `json:"joinCode"`
	}
	if err := c.BodyParser(&body); err != nil || body.JoinCode == "" {
		return badRequest(c, "join code is required")
	}

	group, err := h.groupService.JoinByCode(c.Context(), middleware.UserID(c), body.JoinCode)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// Leave removes the authenticated user from the group.
//
// POST /api/v1/groups/:id/leave
func (h *GroupHandler) Leave(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	if err := h.groupService.Leave(c.Context(), middleware.UserID(c), groupID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveMember removes another member from the group. Owner-only.
//
// POST /api/v1/groups/:id/remove/:memberID
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	memberID, err := pathID(c, "memberID")
	if err != nil {
		return badRequest(c, "invalid member id")
	}
	if err := h.groupService.RemoveMember(c.Context(), middleware.UserID(c), groupID, memberID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Draw runs the secret assignment. Owner-only; repeatable while DRAWN.
//
// POST /api/v1/groups/:id/draw
func (h *GroupHandler) Draw(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	group, err := h.groupService.Draw(c.Context(), middleware.UserID(c), groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// Close moves the group to its terminal CLOSED state. Owner-only.
//
// POST /api/v1/groups/:id/close
func (h *GroupHandler) Close(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	group, err := h.groupService.Close(c.Context(), middleware.UserID(c), groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// MarkAsRead records that the viewer has seen the group's messages.
//
// POST /api/v1/groups/:id/read
func (h *GroupHandler) MarkAsRead(c *fiber.Ctx) error {
	groupID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	readAt, err := h.groupService.MarkAsRead(c.Context(), middleware.UserID(c), groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"lastReadAt": readAt})
}

// pathID parses a positive integer route parameter.
func pathID(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}
