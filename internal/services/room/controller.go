package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/player"
	"github.com/example/gamehub/internal/services/registry"
	"github.com/example/gamehub/internal/services/session"
)

// Pusher delivers events over a player's persistent connection. Delivery is
// best-effort and must not block; players without a live connection are
// silently skipped.
type Pusher interface {
	Push(playerID model.PlayerID, event model.Event)
}

// NopPusher discards all events. Used when no realtime hub is attached.
type NopPusher struct{}

// Push implements Pusher
func (NopPusher) Push(model.PlayerID, model.Event) {}

// Controller orchestrates the registry, player directory, and session
// manager into atomic room operations. Expected outcomes (room missing,
// room full, duplicate membership) surface as boolean results; only
// infrastructure failures come back as errors.
//
// Every membership mutation runs under the registry's per-room lock, held
// across the read-mutate-save sequence so the capacity check and the
// persisted member set cannot diverge. Membership changes additionally
// hold a per-player lock, so one player's exclusivity check, implicit
// leave, and join cannot interleave with a concurrent join elsewhere.
// Lock order is always player lock first, room lock second.
type Controller struct {
	registry  *registry.Registry
	directory *player.Directory
	sessions  *session.Manager
	pusher    Pusher
	clock     clock.Clock
	logger    *slog.Logger

	// memberOf is the authority for cross-room exclusivity. It covers
	// players without a live connection session, who join and leave over
	// plain HTTP.
	memberMu sync.RWMutex
	memberOf map[model.PlayerID]model.RoomID

	playerMu    sync.Mutex
	playerLocks map[model.PlayerID]*sync.Mutex
}

// NewController creates a new room coordinator
func NewController(
	registry *registry.Registry,
	directory *player.Directory,
	sessions *session.Manager,
	pusher Pusher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &Controller{
		registry:    registry,
		directory:   directory,
		sessions:    sessions,
		pusher:      pusher,
		clock:       clock,
		logger:      logger.With(slog.String("component", "room_coordinator")),
		memberOf:    make(map[model.PlayerID]model.RoomID),
		playerLocks: make(map[model.PlayerID]*sync.Mutex),
	}
}

// CreateRoom creates and registers a new room
func (c *Controller) CreateRoom(ctx context.Context, name string, capacity int) (*model.Room, error) {
	return c.registry.Create(ctx, name, capacity)
}

// GetRoom retrieves a room by id
func (c *Controller) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return c.registry.Get(ctx, id)
}

// JoinRoom places the player's character into the room. Returns false when
// the room is missing, full, or the player is already a member. A player
// bound to a different room is implicitly left from it first: the memberOf
// index is the authority for cross-room exclusivity.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, name string) (bool, error) {
	p, err := c.directory.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Warn("join rejected: unknown player",
				slog.String("room_id", string(roomID)),
				slog.String("player_id", string(playerID)))
			return false, nil
		}
		return false, err
	}
	if name == "" {
		name = p.Username
	}

	unlockPlayer := c.lockPlayer(playerID)
	defer unlockPlayer()

	// Cross-room exclusivity: leave the previous room before joining.
	// The player lock is held from the check through the join, so an
	// aligned join for the same player elsewhere serializes behind it.
	// The previous room's lock is released before the target's is taken,
	// so the two room critical sections never nest.
	if prev, bound := c.roomOf(playerID); bound && prev != roomID {
		if _, err := c.leaveLocked(ctx, prev, playerID); err != nil {
			return false, err
		}
	}

	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}

	if room.IsFull() {
		return false, nil
	}

	character := model.NewPlayerCharacter(playerID, name, p.Level)
	if !room.AddPlayer(character) {
		return false, nil
	}

	if err := c.registry.Update(ctx, room); err != nil {
		c.logger.Error("failed to persist join",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return false, err
	}

	c.setMember(playerID, roomID)
	if sid, ok := c.sessions.SessionForPlayer(playerID); ok {
		_ = c.sessions.SetRoom(sid, roomID)
	}

	now := c.clock.Now()
	c.pusher.Push(playerID, model.Event{
		Type:   model.EventRoomJoined,
		RoomID: roomID,
		Name:   room.Name,
		SentAt: now,
	})
	joined := model.Event{
		Type:     model.EventPlayerJoined,
		RoomID:   roomID,
		PlayerID: playerID,
		Name:     name,
		SentAt:   now,
	}
	for _, member := range room.Members {
		if member.PlayerID != playerID {
			c.pusher.Push(member.PlayerID, joined)
		}
	}

	c.logger.Info("player joined room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
		slog.Int("occupancy", room.PlayerCount()))
	return true, nil
}

// LeaveRoom removes the player from the room. Returns false when the room
// is missing or the player is not a member. A room emptied by the leave is
// deleted from the registry.
func (c *Controller) LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (bool, error) {
	unlockPlayer := c.lockPlayer(playerID)
	defer unlockPlayer()
	return c.leaveLocked(ctx, roomID, playerID)
}

// leaveLocked is LeaveRoom's body; the caller holds the player lock.
func (c *Controller) leaveLocked(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (bool, error) {
	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}

	if !room.RemovePlayer(model.CharacterID(playerID)) {
		return false, nil
	}

	if room.PlayerCount() == 0 {
		if _, err := c.registry.Delete(ctx, roomID); err != nil {
			return false, err
		}
	} else {
		if err := c.registry.Update(ctx, room); err != nil {
			return false, err
		}
	}

	c.clearMember(playerID, roomID)
	if sid, ok := c.sessions.SessionForPlayer(playerID); ok {
		if current, bound := c.sessions.RoomOf(playerID); bound && current == roomID {
			_ = c.sessions.ClearRoom(sid)
		}
	}

	left := model.Event{
		Type:     model.EventPlayerLeft,
		RoomID:   roomID,
		PlayerID: playerID,
		SentAt:   c.clock.Now(),
	}
	c.pusher.Push(playerID, left)
	for _, member := range room.Members {
		c.pusher.Push(member.PlayerID, left)
	}

	c.logger.Info("player left room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
		slog.Int("occupancy", room.PlayerCount()))
	return true, nil
}

// MoveCharacter updates the player's character position and fans the new
// position out to the room. Returns false when the room is missing or the
// player is not a member.
func (c *Controller) MoveCharacter(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, pos model.Vector3) (bool, error) {
	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}

	character := room.GetPlayer(model.CharacterID(playerID))
	if character == nil {
		return false, nil
	}
	character.MoveTo(pos)

	if err := c.registry.Update(ctx, room); err != nil {
		return false, err
	}

	moved := model.Event{
		Type:     model.EventPlayerMoved,
		RoomID:   roomID,
		PlayerID: playerID,
		Position: &pos,
		SentAt:   c.clock.Now(),
	}
	for _, member := range room.Members {
		c.pusher.Push(member.PlayerID, moved)
	}
	return true, nil
}

// ListRoomPlayers returns a snapshot of the room's members. An absent room
// yields an empty list, not an error: absence is unexceptional at this
// query boundary.
func (c *Controller) ListRoomPlayers(ctx context.Context, roomID model.RoomID) ([]*model.PlayerCharacter, error) {
	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return []*model.PlayerCharacter{}, nil
		}
		return nil, err
	}
	return room.Players(), nil
}

// RoomStatus returns the room's summary and whether it exists. Used by the
// transport layers to turn a boolean join/leave failure into a reason the
// client can act on.
func (c *Controller) RoomStatus(ctx context.Context, roomID model.RoomID) (model.RoomInfo, bool, error) {
	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return model.RoomInfo{}, false, nil
		}
		return model.RoomInfo{}, false, err
	}
	return room.Info(), true, nil
}

// ListAllRooms returns summaries of every active room
func (c *Controller) ListAllRooms(ctx context.Context) ([]model.RoomInfo, error) {
	rooms, err := c.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]model.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}
	return infos, nil
}

// BroadcastMessage fans a chat message out to every current member of the
// room, the sender included, so all members observe an identical ordered
// stream. Returns false if the room does not exist.
func (c *Controller) BroadcastMessage(ctx context.Context, roomID model.RoomID, message string, senderID model.PlayerID) (bool, error) {
	unlock := c.registry.LockRoom(roomID)
	defer unlock()

	room, err := c.registry.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}

	event := model.Event{
		Type:     model.EventChatMessage,
		RoomID:   roomID,
		PlayerID: senderID,
		Message:  message,
		SentAt:   c.clock.Now(),
	}
	for _, member := range room.Members {
		c.pusher.Push(member.PlayerID, event)
	}
	return true, nil
}

// CleanupSession is the session manager's cleanup callback: when a session
// expires it leaves whatever room it was bound to. Safe to run after an
// explicit leave; the membership removal reports false and nothing
// decrements twice.
func (c *Controller) CleanupSession(ctx context.Context, snapshot model.ConnectionSession) {
	if snapshot.RoomID == "" || snapshot.PlayerID == "" {
		return
	}
	if _, err := c.LeaveRoom(ctx, snapshot.RoomID, snapshot.PlayerID); err != nil {
		c.logger.Error("session cleanup leave failed",
			slog.String("session_id", string(snapshot.ID)),
			slog.String("room_id", string(snapshot.RoomID)),
			slog.String("player_id", string(snapshot.PlayerID)),
			slog.String("error", err.Error()))
	}
	if sid, ok := c.sessions.SessionForPlayer(snapshot.PlayerID); ok && sid == snapshot.ID {
		_ = c.sessions.ClearRoom(sid)
	}
}

// DisconnectSession terminally closes a session, leaving its room if bound.
// A connection's destruction must never leave a stale member behind.
func (c *Controller) DisconnectSession(ctx context.Context, id model.SessionID) {
	snapshot, ok := c.sessions.Disconnect(id)
	if !ok {
		return
	}
	c.CleanupSession(ctx, snapshot)
}

// lockPlayer acquires the membership lock for a single player and returns
// the release function. Acquired before any room lock, never after one.
func (c *Controller) lockPlayer(id model.PlayerID) func() {
	c.playerMu.Lock()
	lock, ok := c.playerLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.playerLocks[id] = lock
	}
	c.playerMu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func (c *Controller) roomOf(playerID model.PlayerID) (model.RoomID, bool) {
	c.memberMu.RLock()
	defer c.memberMu.RUnlock()
	roomID, ok := c.memberOf[playerID]
	return roomID, ok
}

func (c *Controller) setMember(playerID model.PlayerID, roomID model.RoomID) {
	c.memberMu.Lock()
	defer c.memberMu.Unlock()
	c.memberOf[playerID] = roomID
}

// clearMember removes the binding only if it still points at the given
// room, so a stale leave cannot erase a newer membership.
func (c *Controller) clearMember(playerID model.PlayerID, roomID model.RoomID) {
	c.memberMu.Lock()
	defer c.memberMu.Unlock()
	if current, ok := c.memberOf[playerID]; ok && current == roomID {
		delete(c.memberOf, playerID)
	}
}

// ControllerInterface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, name string, capacity int) (*model.Room, error)
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, name string) (bool, error)
	LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (bool, error)
	MoveCharacter(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, pos model.Vector3) (bool, error)
	ListRoomPlayers(ctx context.Context, roomID model.RoomID) ([]*model.PlayerCharacter, error)
	RoomStatus(ctx context.Context, roomID model.RoomID) (model.RoomInfo, bool, error)
	ListAllRooms(ctx context.Context) ([]model.RoomInfo, error)
	BroadcastMessage(ctx context.Context, roomID model.RoomID, message string, senderID model.PlayerID) (bool, error)
	DisconnectSession(ctx context.Context, id model.SessionID)
}

var _ ControllerInterface = (*Controller)(nil)
