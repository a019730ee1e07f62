package model

import "time"

// RoomID uniquely identifies a room
type RoomID string

// DefaultRoomCapacity is used when a requested capacity is zero or negative
const DefaultRoomCapacity = 10

// Room is the membership aggregate: a bounded-capacity group of characters.
// It is a plain value; callers serialize access through the registry's
// per-room lock. AddPlayer is the only insertion path so the capacity check
// and the insert are a single step under that lock.
type Room struct {
	ID        RoomID
	Name      string
	Capacity  int
	Members   map[CharacterID]*PlayerCharacter
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom creates a room, coercing non-positive capacities to the default
func NewRoom(id RoomID, name string, capacity int, now time.Time) *Room {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	return &Room{
		ID:        id,
		Name:      name,
		Capacity:  capacity,
		Members:   make(map[CharacterID]*PlayerCharacter),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddPlayer inserts a character if the room is not full and the id is not
// already present. Returns false in either case without altering state.
func (r *Room) AddPlayer(character *PlayerCharacter) bool {
	if r.IsFull() {
		return false
	}
	if _, exists := r.Members[character.ID]; exists {
		return false
	}
	if r.Members == nil {
		r.Members = make(map[CharacterID]*PlayerCharacter)
	}
	r.Members[character.ID] = character
	return true
}

// RemovePlayer removes the character with the given id, reporting whether
// it was present
func (r *Room) RemovePlayer(id CharacterID) bool {
	if _, ok := r.Members[id]; !ok {
		return false
	}
	delete(r.Members, id)
	return true
}

// GetPlayer returns the member with the given id, or nil
func (r *Room) GetPlayer(id CharacterID) *PlayerCharacter {
	return r.Members[id]
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	return len(r.Members) >= r.Capacity
}

// PlayerCount returns the current member count
func (r *Room) PlayerCount() int {
	return len(r.Members)
}

// Players returns a defensive snapshot of the member set. Mutating the
// returned characters does not affect room state.
func (r *Room) Players() []*PlayerCharacter {
	players := make([]*PlayerCharacter, 0, len(r.Members))
	for _, c := range r.Members {
		players = append(players, c.Clone())
	}
	return players
}

// Clone returns an independent copy of the room, members included
func (r *Room) Clone() *Room {
	cp := *r
	cp.Members = make(map[CharacterID]*PlayerCharacter, len(r.Members))
	for id, c := range r.Members {
		cp.Members[id] = c.Clone()
	}
	return &cp
}

// RoomInfo is a summary of a room for listings
type RoomInfo struct {
	ID             RoomID `json:"room_id"`
	Name           string `json:"room_name"`
	CurrentPlayers int    `json:"current_players"`
	MaxPlayers     int    `json:"max_players"`
}

// Info returns the room's summary
func (r *Room) Info() RoomInfo {
	return RoomInfo{
		ID:             r.ID,
		Name:           r.Name,
		CurrentPlayers: len(r.Members),
		MaxPlayers:     r.Capacity,
	}
}
