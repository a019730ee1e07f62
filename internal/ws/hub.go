package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/example/gamehub/internal/model"
)

// Hub tracks the live client for every connected player and routes pushed
// events to them. It implements the coordinator's Pusher: delivery is
// non-blocking, and a player without a live client is skipped.
type Hub struct {
	clients map[model.PlayerID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	done       chan struct{}
}

type envelope struct {
	playerID model.PlayerID
	data     []byte
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[model.PlayerID]*Client),
		logger:     logger.With(slog.String("component", "ws_hub")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("ws hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.playerID]; ok {
				// New connection supersedes the old one
				close(old.send)
			}
			h.clients[client.playerID] = client
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client registered",
				slog.String("player_id", string(client.playerID)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.playerID]; ok && current == client {
				delete(h.clients, client.playerID)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("ws client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case env := <-h.outbound:
			h.mu.RLock()
			client, ok := h.clients[env.playerID]
			h.mu.RUnlock()
			if !ok {
				continue
			}
			select {
			case client.send <- env.data:
			default:
				h.logger.Warn("ws message dropped - client buffer full",
					slog.String("player_id", string(env.playerID)))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for playerID, client := range h.clients {
				close(client.send)
				delete(h.clients, playerID)
			}
			h.mu.Unlock()
			h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. A no-op after Close, so pumps winding
// down during shutdown cannot block on a stopped event loop.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub. A no-op after Close.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Push delivers an event to the player's live connection, if any.
// Implements the coordinator's Pusher interface.
func (h *Hub) Push(playerID model.PlayerID, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.outbound <- envelope{playerID: playerID, data: data}:
	default:
		h.logger.Warn("ws push dropped - hub buffer full",
			slog.String("player_id", string(playerID)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
