package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/auth"
	"github.com/example/gamehub/internal/services/room"
	"github.com/example/gamehub/internal/services/session"
)

// Handler upgrades authenticated HTTP requests to websocket connections and
// dispatches client commands to the coordinator.
type Handler struct {
	hub         *Hub
	auth        *auth.Service
	sessions    *session.Manager
	coordinator *room.Controller
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, authService *auth.Service, sessions *session.Manager, coordinator *room.Controller, logger *slog.Logger) *Handler {
	return &Handler{
		hub:         hub,
		auth:        authService,
		sessions:    sessions,
		coordinator: coordinator,
		logger:      logger.With(slog.String("component", "ws_handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	authToken, err := h.auth.Validate(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := h.sessions.Open()
	if err := h.sessions.Bind(sess.ID, authToken.PlayerID); err != nil {
		h.logger.Error("ws session bind failed",
			slog.String("session_id", string(sess.ID)),
			slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}

	client := NewClient(h.hub, conn, authToken.PlayerID, sess.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h)
}

// handleCommand executes one inbound client command
func (h *Handler) handleCommand(c *Client, cmd Command) {
	ctx := context.Background()

	switch cmd.Type {
	case CmdJoinRoom:
		roomID := model.RoomID(cmd.RoomID)
		joined, err := h.coordinator.JoinRoom(ctx, roomID, c.playerID, cmd.Name)
		if err != nil {
			h.logger.Error("ws join failed",
				slog.String("room_id", cmd.RoomID),
				slog.String("player_id", string(c.playerID)),
				slog.String("error", err.Error()))
			h.pushError(c, roomID, "join failed")
			return
		}
		if !joined {
			h.pushError(c, roomID, h.joinFailureReason(ctx, roomID))
		}

	case CmdLeaveRoom:
		roomID := model.RoomID(cmd.RoomID)
		left, err := h.coordinator.LeaveRoom(ctx, roomID, c.playerID)
		if err != nil {
			h.logger.Error("ws leave failed",
				slog.String("room_id", cmd.RoomID),
				slog.String("player_id", string(c.playerID)),
				slog.String("error", err.Error()))
			h.pushError(c, roomID, "leave failed")
			return
		}
		if !left {
			h.pushError(c, roomID, "not in room")
		}

	case CmdMove:
		if cmd.Position == nil {
			h.pushError(c, model.RoomID(cmd.RoomID), "position required")
			return
		}
		roomID := model.RoomID(cmd.RoomID)
		moved, err := h.coordinator.MoveCharacter(ctx, roomID, c.playerID, *cmd.Position)
		if err != nil {
			h.logger.Error("ws move failed",
				slog.String("room_id", cmd.RoomID),
				slog.String("player_id", string(c.playerID)),
				slog.String("error", err.Error()))
			return
		}
		if !moved {
			h.pushError(c, roomID, "not in room")
		}

	case CmdChat:
		roomID := model.RoomID(cmd.RoomID)
		sent, err := h.coordinator.BroadcastMessage(ctx, roomID, cmd.Message, c.playerID)
		if err != nil {
			h.logger.Error("ws chat failed",
				slog.String("room_id", cmd.RoomID),
				slog.String("player_id", string(c.playerID)),
				slog.String("error", err.Error()))
			return
		}
		if !sent {
			h.pushError(c, roomID, "room not found")
		}

	case CmdHeartbeat:
		if err := h.sessions.Heartbeat(c.sessionID); err != nil {
			return
		}
		h.hub.Push(c.playerID, model.Event{
			Type:   model.EventHeartbeatAck,
			SentAt: time.Now(),
		})

	default:
		h.logger.Warn("ws unknown command",
			slog.String("type", cmd.Type),
			slog.String("player_id", string(c.playerID)))
	}
}

// joinFailureReason derives a client-facing reason for a rejected join
func (h *Handler) joinFailureReason(ctx context.Context, roomID model.RoomID) string {
	info, exists, err := h.coordinator.RoomStatus(ctx, roomID)
	if err != nil || !exists {
		return "room not found"
	}
	if info.CurrentPlayers >= info.MaxPlayers {
		return "room is full"
	}
	return "already in room"
}

func (h *Handler) pushError(c *Client, roomID model.RoomID, reason string) {
	h.hub.Push(c.playerID, model.Event{
		Type:    model.EventError,
		RoomID:  roomID,
		Message: reason,
		SentAt:  time.Now(),
	})
}

// extractToken pulls the session token from the query string or the
// Authorization header
func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
