package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	websocketHandler "github.com/cjnghn/drone-topview-analysis/interfaces/api/websocket"
)

// SetupWebSocketRoutes exposes ingestion progress; clients subscribe with ?room=<job id>
func SetupWebSocketRoutes(app *fiber.App) {
	wsHandler := websocketHandler.NewWebSocketHandler()

	app.Use("/ws", wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
