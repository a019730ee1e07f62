package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/storage"
)

// Config holds configurable registry settings
type Config struct {
	// DefaultCapacity replaces non-positive requested capacities
	DefaultCapacity int
}

// DefaultConfig returns the default registry configuration
func DefaultConfig() Config {
	return Config{
		DefaultCapacity: model.DefaultRoomCapacity,
	}
}

// Registry owns the set of active rooms. It allocates ids, persists room
// records, and hands out per-room locks so same-room mutations serialize
// while distinct rooms proceed independently. The map guarding the lock
// table is its own short critical section and is never held across storage
// calls.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config

	mu    sync.Mutex
	locks map[model.RoomID]*sync.Mutex
}

// New creates a new room registry
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Registry {
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = model.DefaultRoomCapacity
	}
	return &Registry{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "room_registry")),
		cfg:     cfg,
		locks:   make(map[model.RoomID]*sync.Mutex),
	}
}

// Create allocates a room with a fresh id and registers it
func (r *Registry) Create(ctx context.Context, name string, capacity int) (*model.Room, error) {
	if capacity <= 0 {
		capacity = r.cfg.DefaultCapacity
	}

	room := model.NewRoom(model.RoomID(uuid.NewString()), name, capacity, r.clock.Now())

	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	r.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("name", name),
		slog.Int("capacity", room.Capacity))
	return room, nil
}

// Get retrieves a room by id
func (r *Registry) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// List returns a snapshot of all active rooms. Insertion order is not
// guaranteed.
func (r *Registry) List(ctx context.Context) ([]*model.Room, error) {
	return r.storage.ListRooms(ctx)
}

// Update replaces the stored aggregate for the room's id
func (r *Registry) Update(ctx context.Context, room *model.Room) error {
	exists, err := r.storage.RoomExists(ctx, room.ID)
	if err != nil {
		return err
	}
	if !exists {
		return model.ErrRoomNotFound
	}
	room.UpdatedAt = r.clock.Now()
	return r.storage.SaveRoom(ctx, room)
}

// Delete removes a room, reporting whether it was present. Its lock table
// entry goes with it; room ids are never reused, so a late waiter on the old
// lock just observes the room as gone.
func (r *Registry) Delete(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := r.storage.RoomExists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if err := r.storage.DeleteRoom(ctx, id); err != nil {
		return false, err
	}

	r.mu.Lock()
	delete(r.locks, id)
	r.mu.Unlock()

	r.logger.Info("room deleted", slog.String("room_id", string(id)))
	return true, nil
}

// LockRoom acquires the mutation lock for a single room and returns the
// release function. The closure is bound to the mutex instance, so releasing
// stays correct even if the room (and its lock table entry) is deleted while
// held.
func (r *Registry) LockRoom(id model.RoomID) func() {
	lock := r.lockFor(id)
	lock.Lock()
	return lock.Unlock
}

func (r *Registry) lockFor(id model.RoomID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
