package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a real-time notification broadcast to all clients: note-change
// events, recording commands, and user-facing messages.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity,omitempty"`
	Action string         `json:"action,omitempty"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Inbound is a message sent by the browser client: live transcript segments,
// permission state resolutions, and recognition errors.
type Inbound struct {
	Action   string   `json:"action"`
	Segments []string `json:"segments,omitempty"`
	State    string   `json:"state,omitempty"`
	Kind     string   `json:"kind,omitempty"`
}

// InboundFunc receives every parsed client message.
type InboundFunc func(Inbound)

// Hub maintains the set of active WebSocket clients, broadcasts messages,
// and routes inbound client messages to a single consumer.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	inbound InboundFunc
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// OnInbound registers the consumer for client messages. There is exactly one
// consumer (the speech bridge); registering replaces any previous one.
func (h *Hub) OnInbound(fn InboundFunc) {
	h.mu.Lock()
	h.inbound = fn
	h.mu.Unlock()
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// Receive parses a raw client frame and hands it to the inbound consumer.
func (h *Hub) Receive(data []byte) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		h.logger.Warn("bad client message", "error", err)
		return
	}

	h.mu.RLock()
	fn := h.inbound
	h.mu.RUnlock()

	if fn != nil {
		fn(in)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
