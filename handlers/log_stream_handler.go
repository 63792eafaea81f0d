package handlers

import (
	"context"

	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/logbus"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WSHandler struct {
	bus *logbus.Bus
}

func NewWSHandler(bus *logbus.Bus) *WSHandler {
	return &WSHandler{bus: bus}
}

func (h *WSHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Not a websocket request"})
}

// HandleLogStream pushes the session's pipeline events to one client.
// When no event arrives within the receive timeout a heartbeat keeps
// the connection alive. Disconnecting tears the session down; matching
// work in flight keeps running and persisting regardless.
func (h *WSHandler) HandleLogStream(c *websocket.Conn) {
	sessionID := c.Params("session_id")
	logging.Logger.Info("log stream connected", "session_id", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer h.bus.Close(sessionID)

	// detect the client going away while we wait for events
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		event, ok := h.bus.Receive(ctx, sessionID, logbus.DefaultReceiveTimeout)
		if !ok {
			logging.Logger.Info("log stream closed", "session_id", sessionID)
			return
		}
		if err := c.WriteJSON(event); err != nil {
			logging.Logger.Info("log stream write failed, closing", "session_id", sessionID, "error", err)
			return
		}
	}
}
