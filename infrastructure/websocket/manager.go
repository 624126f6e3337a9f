package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

// Event types pushed to clients
const (
	EventIngestStarted   = "ingest:started"
	EventIngestProgress  = "ingest:progress"
	EventIngestCompleted = "ingest:completed"
	EventIngestFailed    = "ingest:failed"
	EventPong            = "pong"
	EventJoined          = "room:joined"
)

// Message is the envelope of every frame sent to a client
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// incoming is what clients may send
type incoming struct {
	Type string `json:"type"` // "ping" or "join"
	Room string `json:"room,omitempty"`
}

// Conn is the part of a websocket connection the manager writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

type client struct {
	id     uuid.UUID
	roomID string
	mu     sync.Mutex // serializes writes on one connection
}

type WebSocketManager struct {
	mu      sync.RWMutex
	clients map[Conn]*client
}

// Manager is the process-wide hub used by handlers and workers
var Manager = NewManager()

func NewManager() *WebSocketManager {
	return &WebSocketManager{clients: make(map[Conn]*client)}
}

func (m *WebSocketManager) RegisterClient(conn Conn, clientID uuid.UUID, roomID string) {
	m.mu.Lock()
	m.clients[conn] = &client{id: clientID, roomID: roomID}
	total := len(m.clients)
	m.mu.Unlock()

	logger.WebSocket("client_registered", "WebSocket client registered", map[string]interface{}{
		"client_id": clientID.String(),
		"room":      roomID,
		"clients":   total,
	})
}

func (m *WebSocketManager) UnregisterClient(conn Conn) {
	m.mu.Lock()
	c, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mu.Unlock()

	if ok {
		logger.WebSocket("client_unregistered", "WebSocket client unregistered", map[string]interface{}{
			"client_id": c.id.String(),
		})
	}
}

// JoinRoom moves a registered client into roomID
func (m *WebSocketManager) JoinRoom(conn Conn, roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[conn]
	if !ok {
		return false
	}
	c.roomID = roomID
	return true
}

// ClientCount returns the number of connected clients
func (m *WebSocketManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// BroadcastToRoom sends an event to every client of roomID
func (m *WebSocketManager) BroadcastToRoom(roomID, messageType string, data map[string]interface{}) {
	m.broadcast(messageType, data, func(c *client) bool { return c.roomID == roomID })
}

// Broadcast sends an event to every client
func (m *WebSocketManager) Broadcast(messageType string, data map[string]interface{}) {
	m.broadcast(messageType, data, func(*client) bool { return true })
}

func (m *WebSocketManager) broadcast(messageType string, data map[string]interface{}, match func(*client) bool) {
	payload, err := json.Marshal(Message{Type: messageType, Data: data, Timestamp: time.Now()})
	if err != nil {
		logger.WebSocketError("marshal_failed", "Failed to encode websocket message", err, nil)
		return
	}

	m.mu.RLock()
	targets := make(map[Conn]*client)
	for conn, c := range m.clients {
		if match(c) {
			targets[conn] = c
		}
	}
	m.mu.RUnlock()

	for conn, c := range targets {
		if err := m.send(conn, c, payload); err != nil {
			logger.WebSocketError("send_failed", "Failed to send websocket message", err, map[string]interface{}{
				"client_id": c.id.String(),
				"type":      messageType,
			})
			m.UnregisterClient(conn)
		}
	}
}

func (m *WebSocketManager) send(conn Conn, c *client, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// HandleWebSocketMessage answers pings and room joins; anything else is ignored
func (m *WebSocketManager) HandleWebSocketMessage(conn Conn, messageType int, raw []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg incoming
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	m.mu.RLock()
	c, ok := m.clients[conn]
	m.mu.RUnlock()
	if !ok {
		return
	}

	var reply Message
	switch msg.Type {
	case "ping":
		reply = Message{Type: EventPong, Timestamp: time.Now()}
	case "join":
		if msg.Room == "" || !m.JoinRoom(conn, msg.Room) {
			return
		}
		reply = Message{Type: EventJoined, Data: map[string]interface{}{"room": msg.Room}, Timestamp: time.Now()}
	default:
		return
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := m.send(conn, c, payload); err != nil {
		logger.WebSocketError("reply_failed", "Failed to reply to websocket message", err, map[string]interface{}{
			"client_id": c.id.String(),
		})
	}
}
