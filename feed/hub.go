package feed

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/utils"
)

// Event kinds carried on the staff order feed. These four are the whole
// vocabulary; anything else a client receives is a protocol error.
const (
	EventOrderInserted     = "order_inserted"
	EventOrderUpdated      = "order_updated"
	EventOrderItemInserted = "order_item_inserted"
	EventOrderItemUpdated  = "order_item_updated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	id   uuid.UUID
	role string
}

// Hub fans change-feed events out to every connected staff view.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]client),
	}
}

// RegisterClient adds a connection to the fan-out set and returns its id.
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New()
	h.clients[conn] = client{id: id, role: role}
	return id
}

// UnregisterClient drops and closes a connection. Safe to call twice.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount reports how many staff views are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) BroadcastOrderInserted(order models.Order) {
	h.broadcast(Message{Event: EventOrderInserted, Data: order})
}

func (h *Hub) BroadcastOrderUpdated(order models.Order) {
	h.broadcast(Message{Event: EventOrderUpdated, Data: order})
}

func (h *Hub) BroadcastOrderItemInserted(item models.OrderItem) {
	h.broadcast(Message{Event: EventOrderItemInserted, Data: item})
}

func (h *Hub) BroadcastOrderItemUpdated(item models.OrderItem) {
	h.broadcast(Message{Event: EventOrderItemUpdated, Data: item})
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("feed: marshal message: %v", err)
		return
	}

	for conn, cl := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("feed: send to client %s (%s): %v", cl.id, cl.role, err)
			continue
		}
	}
}
