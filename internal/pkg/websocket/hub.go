package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message types pushed to subscribers
const (
	TypeMessage = "message"
	TypeStatus  = "status"
	TypeError   = "error"
)

// Message is one event pushed to the subscribers of a service request
type Message struct {
	Type      string      `json:"type"`
	RequestID int64       `json:"requestId"`
	SenderID  int64       `json:"senderId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// InboundFunc handles chat text typed into an open socket
type InboundFunc func(ctx context.Context, requestID, userID int64, content string) error

// Hub maintains the set of active clients per service request and broadcasts
// events to them. All registry mutations happen on the Run goroutine.
type Hub struct {
	// Registered clients organized by service request ID
	rooms map[int64]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// Guards rooms for readers outside Run
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	inbound InboundFunc
	logger  zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// SetInbound installs the handler for messages sent by clients
func (h *Hub) SetInbound(fn InboundFunc) {
	h.inbound = fn
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.requestID]; !ok {
		h.rooms[client.requestID] = make(map[*Client]bool)
	}
	h.rooms[client.requestID][client] = true

	h.logger.Info().
		Int64("requestID", client.requestID).
		Int64("userID", client.userID).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.requestID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.requestID)
	}

	h.logger.Info().
		Int64("requestID", client.requestID).
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

// broadcastMessage delivers to every client of the room. Clients whose buffer
// is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Int64("requestID", message.RequestID).Msg("Failed to marshal message for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[message.RequestID]
	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("requestID", message.RequestID).
		Str("type", message.Type).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Broadcast queues msg for the subscribers of msg.RequestID. It never blocks;
// events are dropped when the queue is full.
func (h *Hub) Broadcast(msg *Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Int64("requestID", msg.RequestID).Msg("Broadcast queue full, dropping event")
	}
}

// ClientsCount returns the number of connected clients for a service request
func (h *Hub) ClientsCount(requestID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[requestID])
}
