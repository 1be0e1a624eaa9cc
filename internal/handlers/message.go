package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kumpul/server/internal/middleware"
	"kumpul/server/internal/models"
)

// PostMessageRequest represents the post message request body
type PostMessageRequest struct {
	Content string `json:"content"`
}

// SendDirectMessageRequest represents the legacy peer-addressed body
type SendDirectMessageRequest struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

// MarkReadRequest represents the legacy mark-as-read request body
type MarkReadRequest struct {
	MessageID int64 `json:"messageId,omitempty"`
}

// PostMessage appends a message to a conversation
func (h *Handler) PostMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	conversationID, ok := paramID(c, "conversationId")
	if !ok {
		return badRequest(c, "Invalid conversation id")
	}

	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	msg, err := h.svc.PostMessage(c.Context(), userID, conversationID, req.Content)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}

// SendDirectMessage posts a legacy peer-addressed message, resolving the
// direct conversation first
func (h *Handler) SendDirectMessage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req SendDirectMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ReceiverID <= 0 {
		return badRequest(c, "Receiver id is required")
	}

	msg, err := h.svc.PostDirectMessage(c.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}

// ListMessages returns a conversation's history in insertion order
func (h *Handler) ListMessages(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	conversationID, ok := paramID(c, "conversationId")
	if !ok {
		return badRequest(c, "Invalid conversation id")
	}

	msgs, err := h.svc.ListMessages(c.Context(), conversationID, userID)
	if err != nil {
		return h.fail(c, err)
	}
	if msgs == nil {
		msgs = []models.MessageWithSender{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    msgs,
	})
}

// MarkConversationRead stamps the caller's last-read time on a conversation
func (h *Handler) MarkConversationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	conversationID, ok := paramID(c, "conversationId")
	if !ok {
		return badRequest(c, "Invalid conversation id")
	}

	if err := h.svc.MarkConversationRead(c.Context(), conversationID, userID); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conversation marked as read",
	})
}

// MarkAsRead services the legacy read model: a single peer-addressed
// message when messageId is given, otherwise everything addressed to the
// caller
func (h *Handler) MarkAsRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.MessageID > 0 {
		if err := h.svc.MarkMessageRead(c.Context(), req.MessageID); err != nil {
			return h.fail(c, err)
		}
	} else {
		if err := h.svc.MarkAllMessagesRead(c.Context(), userID); err != nil {
			return h.fail(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Messages marked as read",
	})
}
