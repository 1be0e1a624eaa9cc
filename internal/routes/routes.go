package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"kumpul/server/internal/handlers"
	"kumpul/server/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, h *handlers.Handler, auth fiber.Handler) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Kumpul chat server is running",
		})
	})

	// Conversation routes (protected)
	conversations := api.Group("/conversations", auth)
	conversations.Get("/", middleware.ReadRateLimiter(), h.ListConversations)
	conversations.Post("/direct", h.ResolveDirectConversation)
	conversations.Post("/:conversationId/participants", h.AddParticipant)
	conversations.Post("/:conversationId/messages", middleware.MessageRateLimiter(), h.PostMessage)
	conversations.Get("/:conversationId/messages", middleware.ReadRateLimiter(), h.ListMessages)
	conversations.Post("/:conversationId/read", h.MarkConversationRead)

	// Event chat provisioning, called by the RSVP approval workflow
	events := api.Group("/events", auth)
	events.Post("/:eventId/chat", h.EnsureEventChat)

	// Legacy peer-addressed message routes (protected)
	messages := api.Group("/messages", auth)
	messages.Post("/", middleware.MessageRateLimiter(), h.SendDirectMessage)
	messages.Put("/read", h.MarkAsRead)

	// WebSocket gateway (protected)
	api.Get("/ws", auth, h.WebSocketUpgrade, websocket.New(h.HandleWebSocket))
	api.Get("/ws/stats", auth, h.GetWebSocketStats)
}
