package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kumpul/server/internal/middleware"
)

// EnsureEventChat finds or creates the group conversation for an event.
// The caller (typically the event host approving the first attendee)
// becomes the first participant when the conversation is created.
func (h *Handler) EnsureEventChat(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	eventID, ok := paramID(c, "eventId")
	if !ok {
		return badRequest(c, "Invalid event ID")
	}

	conv, err := h.svc.EnsureEventGroupChat(c.Context(), eventID, userID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    conv,
	})
}

// AddParticipant adds a user to a conversation. Called by the approval
// workflow after EnsureEventChat; adding an existing member is a no-op.
func (h *Handler) AddParticipant(c *fiber.Ctx) error {
	conversationID, ok := paramID(c, "conversationId")
	if !ok {
		return badRequest(c, "Invalid conversation ID")
	}

	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID <= 0 {
		return badRequest(c, "userId is required")
	}

	if err := h.svc.AddParticipant(c.Context(), conversationID, req.UserID); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"conversationId": conversationID, "userId": req.UserID},
	})
}

// ResolveDirectConversation finds or creates the 1:1 conversation
// between the caller and the given peer.
func (h *Handler) ResolveDirectConversation(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID <= 0 {
		return badRequest(c, "userId is required")
	}

	conv, err := h.svc.ResolveDirectConversation(c.Context(), userID, req.UserID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    conv,
	})
}
