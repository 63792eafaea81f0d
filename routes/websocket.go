package routes

import (
	"go_procure_backend/handlers"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func SetupWebSocketRoutes(app *fiber.App, wsHandler *handlers.WSHandler) {
	ws := app.Group("/ws")

	ws.Use("/logs/:session_id", wsHandler.WebSocketUpgrade)
	ws.Get("/logs/:session_id", websocket.New(wsHandler.HandleLogStream))
}
