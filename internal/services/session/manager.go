package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/model"
)

// Config holds configuration for the session manager
type Config struct {
	// HeartbeatTimeout is how long a session may go without a heartbeat
	// before it is forced offline
	HeartbeatTimeout time.Duration
	// ReapInterval is how often the reaper scans for stale sessions
	ReapInterval time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		HeartbeatTimeout: 30 * time.Second,
		ReapInterval:     5 * time.Second,
	}
}

// CleanupFunc is invoked with a session snapshot when the session expires or
// disconnects, so room membership can be torn down.
type CleanupFunc func(ctx context.Context, session model.ConnectionSession)

// Manager tracks the lifecycle of every client connection: identity binding,
// heartbeat liveness, and the player's current room binding. It is the
// authority consulted for cross-room exclusivity.
type Manager struct {
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config

	mu       sync.RWMutex
	sessions map[model.SessionID]*model.ConnectionSession
	byPlayer map[model.PlayerID]model.SessionID

	cleanup CleanupFunc
}

// NewManager creates a new session manager
func NewManager(clock clock.Clock, cfg Config, logger *slog.Logger) *Manager {
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = DefaultConfig().HeartbeatTimeout
	}
	if cfg.ReapInterval == 0 {
		cfg.ReapInterval = DefaultConfig().ReapInterval
	}
	return &Manager{
		clock:    clock,
		logger:   logger.With(slog.String("component", "sessions")),
		cfg:      cfg,
		sessions: make(map[model.SessionID]*model.ConnectionSession),
		byPlayer: make(map[model.PlayerID]model.SessionID),
	}
}

// SetCleanup registers the cleanup callback. Wired after construction so the
// coordinator can depend on the manager without a cycle.
func (m *Manager) SetCleanup(fn CleanupFunc) {
	m.cleanup = fn
}

// Open creates a session for a newly established connection
func (m *Manager) Open() model.ConnectionSession {
	now := m.clock.Now()
	session := &model.ConnectionSession{
		ID:            model.SessionID(generateID("conn_")),
		State:         model.SessionConnecting,
		ConnectedAt:   now,
		LastHeartbeat: now,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return *session
}

// Bind attaches a player identity to the session, moving it online. A prior
// session bound to the same player is superseded; its cleanup is the
// caller's responsibility via Disconnect.
func (m *Manager) Bind(id model.SessionID, playerID model.PlayerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if session.State == model.SessionDisconnected {
		return model.ErrSessionDisconnected
	}

	session.PlayerID = playerID
	session.State = model.SessionOnline
	session.LastHeartbeat = m.clock.Now()
	m.byPlayer[playerID] = id

	m.logger.Info("session bound",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)))
	return nil
}

// Heartbeat refreshes the session's liveness. A session that lapsed offline
// comes back online; a disconnected session stays dead.
func (m *Manager) Heartbeat(id model.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	if session.State == model.SessionDisconnected {
		return model.ErrSessionDisconnected
	}

	session.LastHeartbeat = m.clock.Now()
	if session.State == model.SessionOffline {
		session.State = model.SessionOnline
	}
	return nil
}

// Get returns a snapshot of the session
func (m *Manager) Get(id model.SessionID) (model.ConnectionSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return model.ConnectionSession{}, model.ErrSessionNotFound
	}
	return *session, nil
}

// SetRoom records the session's current room binding
func (m *Manager) SetRoom(id model.SessionID, roomID model.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	session.RoomID = roomID
	return nil
}

// ClearRoom drops the session's room binding
func (m *Manager) ClearRoom(id model.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	session.RoomID = ""
	return nil
}

// RoomOf returns the room the player's live session is bound to, if any
func (m *Manager) RoomOf(playerID model.PlayerID) (model.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPlayer[playerID]
	if !ok {
		return "", false
	}
	session, ok := m.sessions[id]
	if !ok || session.RoomID == "" {
		return "", false
	}
	return session.RoomID, true
}

// SessionForPlayer returns the player's current session id, if any
func (m *Manager) SessionForPlayer(playerID model.PlayerID) (model.SessionID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPlayer[playerID]
	return id, ok
}

// Disconnect terminally closes the session and removes it, returning the
// final snapshot so callers can tear down room membership. Disconnecting an
// unknown session is not an error; transport teardown paths can race.
func (m *Manager) Disconnect(id model.SessionID) (model.ConnectionSession, bool) {
	m.mu.Lock()

	session, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return model.ConnectionSession{}, false
	}

	session.State = model.SessionDisconnected
	snapshot := *session
	delete(m.sessions, id)
	if session.PlayerID != "" && m.byPlayer[session.PlayerID] == id {
		delete(m.byPlayer, session.PlayerID)
	}
	m.mu.Unlock()

	m.logger.Info("session disconnected",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(snapshot.PlayerID)))
	return snapshot, true
}

// ExpireStale forces sessions past the heartbeat timeout offline and runs
// the cleanup callback for each. Cleanup runs outside the manager lock.
func (m *Manager) ExpireStale(ctx context.Context) {
	deadline := m.clock.Now().Add(-m.cfg.HeartbeatTimeout)

	var expired []model.ConnectionSession
	m.mu.Lock()
	for _, session := range m.sessions {
		if session.State == model.SessionOnline && session.LastHeartbeat.Before(deadline) {
			session.State = model.SessionOffline
			expired = append(expired, *session)
		}
	}
	m.mu.Unlock()

	for _, snapshot := range expired {
		m.logger.Warn("session heartbeat lapsed",
			slog.String("session_id", string(snapshot.ID)),
			slog.String("player_id", string(snapshot.PlayerID)))
		if m.cleanup != nil {
			m.cleanup(ctx, snapshot)
		}
	}
}

// Run drives the expiry reaper until the context is cancelled
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.ExpireStale(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
