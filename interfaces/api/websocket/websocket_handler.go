package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	websocketManager "github.com/cjnghn/drone-topview-analysis/infrastructure/websocket"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

type WebSocketHandler struct {
	manager *websocketManager.WebSocketManager
}

func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{manager: websocketManager.Manager}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket registers the connection in ?room= (an ingest job id) and serves ping/join messages
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	clientID := uuid.New()
	roomID := c.Query("room", "")

	logger.WebSocket("client_connected", "Client connected", map[string]interface{}{
		"client_id": clientID.String(),
		"room":      roomID,
	})

	h.manager.RegisterClient(c, clientID, roomID)
	defer h.manager.UnregisterClient(c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WebSocketError("read_message", "WebSocket read error", err, map[string]interface{}{"client_id": clientID.String()})
			}
			break
		}

		h.manager.HandleWebSocketMessage(c, messageType, message)
	}
}
