package websocket

import (
	"log/slog"
	"sync"

	"github.com/harutok/counts-service/internal/types"
)

// Hub maintains the set of active clients and broadcasts events to them.
// Several clients may subscribe to the same user's counts at once (the same
// household watching one child's day from different devices).
type Hub struct {
	// Registered clients grouped by the user ID they subscribe to
	clients map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel to broadcast events
	broadcast chan *BroadcastMessage
}

// BroadcastMessage represents an event addressed to one user's subscribers
type BroadcastMessage struct {
	UserID string       `json:"user_id"`
	Event  *types.Event `json:"event"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			slog.Info("WebSocket client connected", slog.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if subscribers, ok := h.clients[client.userID]; ok && subscribers[client] {
				delete(subscribers, client)
				if len(subscribers) == 0 {
					delete(h.clients, client.userID)
				}
				close(client.send)
				slog.Info("WebSocket client disconnected", slog.String("user_id", client.userID))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToUser(message.UserID, message.Event)
		}
	}
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToUser sends an event to every subscriber of a user
func (h *Hub) BroadcastToUser(userID string, event *types.Event) {
	message := &BroadcastMessage{
		UserID: userID,
		Event:  event,
	}

	select {
	case h.broadcast <- message:
	default:
		slog.Warn("Broadcast channel is full, dropping message")
	}
}

// broadcastToUser is the internal method that actually sends the event
func (h *Hub) broadcastToUser(userID string, event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if err := client.SendEvent(event); err != nil {
			slog.Error("Failed to send event to client",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
			// Remove the client if sending fails
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}

// IsUserConnected checks if anyone subscribes to a user's counts
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[userID]) > 0
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subscribers := range h.clients {
		total += len(subscribers)
	}
	return total
}
