package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"kumpul/server/internal/chat"
	"kumpul/server/internal/ws"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	svc *chat.Service
	hub ws.Directory
	log zerolog.Logger
}

// NewHandler creates a Handler over the chat service and the connection
// directory.
func NewHandler(svc *chat.Service, hub ws.Directory, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, log: log}
}

// fail maps a chat core error onto its HTTP status and renders the error
// envelope. Unknown errors are logged and reported as a plain 500.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, chat.ErrNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, chat.ErrForbidden):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, chat.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, chat.ErrConflict):
		status = fiber.StatusConflict
		message = err.Error()
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	v, err := c.ParamsInt(name)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int64(v), true
}
