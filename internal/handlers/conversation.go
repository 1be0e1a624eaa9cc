package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kumpul/server/internal/middleware"
	"kumpul/server/internal/models"
)

// ListConversations returns the caller's inbox: one summary per
// conversation with at least one message, newest activity first
func (h *Handler) ListConversations(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	summaries, err := h.svc.ListConversations(c.Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summaries,
	})
}
