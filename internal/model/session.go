package model

import "time"

// SessionID identifies one client's persistent connection
type SessionID string

// SessionState is a connection session's lifecycle state
type SessionState string

const (
	// SessionConnecting means the transport is open but no player is bound yet
	SessionConnecting SessionState = "connecting"
	// SessionOnline means a player is bound and heartbeats are current
	SessionOnline SessionState = "online"
	// SessionOffline means heartbeats lapsed past the liveness timeout
	SessionOffline SessionState = "offline"
	// SessionDisconnected is terminal; a reconnecting client gets a new session
	SessionDisconnected SessionState = "disconnected"
)

// ConnectionSession is the ephemeral per-connection record bridging the
// transport to room operations. RoomID is the player's current room binding
// and is the authority for cross-room exclusivity.
type ConnectionSession struct {
	ID            SessionID
	PlayerID      PlayerID
	State         SessionState
	RoomID        RoomID // empty when not in a room
	ConnectedAt   time.Time
	LastHeartbeat time.Time
}
