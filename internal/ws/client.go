package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/gamehub/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client command types sent by connected peers
const (
	CmdJoinRoom  = "join_room"
	CmdLeaveRoom = "leave_room"
	CmdMove      = "move"
	CmdChat      = "chat"
	CmdHeartbeat = "heartbeat"
)

// Command is an inbound frame from a connected client
type Command struct {
	Type     string         `json:"type"`
	RoomID   string         `json:"room_id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Message  string         `json:"message,omitempty"`
	Position *model.Vector3 `json:"position,omitempty"`
}

// Client represents a single websocket connection bound to a player
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	playerID    model.PlayerID
	sessionID   model.SessionID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, playerID model.PlayerID, sessionID model.SessionID) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		playerID:    playerID,
		sessionID:   sessionID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ReadPump pumps commands from the websocket connection into the handler.
// On exit it unregisters the client and tears the session down, which
// leaves any room the player was in.
func (c *Client) ReadPump(h *Handler) {
	defer func() {
		c.hub.Unregister(c)
		h.coordinator.DisconnectSession(context.Background(), c.sessionID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws unexpected close",
					slog.String("player_id", string(c.playerID)),
					slog.String("error", err.Error()))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			h.logger.Warn("ws malformed command",
				slog.String("player_id", string(c.playerID)))
			continue
		}

		h.handleCommand(c, cmd)
	}
}

// WritePump pumps events from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
