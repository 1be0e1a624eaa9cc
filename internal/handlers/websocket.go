package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"kumpul/server/internal/ws"
)

// WebSocketUpgrade rejects plain HTTP requests on the websocket route
func (h *Handler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
		"success": false,
		"error":   "WebSocket upgrade required",
	})
}

// HandleWebSocket runs one gateway session. It blocks until the
// connection closes.
func (h *Handler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(int64)

	client := ws.NewClient(userID, conn, h.hub, h.svc, h.log)
	client.Run()
}

// GetWebSocketStats returns connection registry statistics
func (h *Handler) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"onlineCount": h.hub.Count(),
			"userIds":     h.hub.OnlineUserIDs(),
		},
	})
}
