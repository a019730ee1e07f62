package response

import (
	"time"

	"github.com/example/gamehub/internal/model"
	"github.com/example/gamehub/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Level       int       `json:"level"`
	Experience  int       `json:"experience"`
	Currency    int       `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		Username:    p.Username,
		Level:       p.Level,
		Experience:  p.Experience,
		Currency:    p.Currency,
		CreatedAt:   p.CreatedAt,
		LastLoginAt: p.LastLoginAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromToken creates an AuthResponse from an issued token
func AuthResponseFromToken(t *auth.Token) AuthResponse {
	return AuthResponse{
		Player:    PlayerFromModel(&t.Player),
		Token:     t.Value,
		ExpiresAt: t.ExpiresAt,
	}
}

// RoomInfo is a room summary in API responses
type RoomInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CurrentPlayers int    `json:"current_players"`
	MaxPlayers     int    `json:"max_players"`
}

// RoomInfoFromModel converts a model.RoomInfo
func RoomInfoFromModel(info model.RoomInfo) RoomInfo {
	return RoomInfo{
		ID:             string(info.ID),
		Name:           info.Name,
		CurrentPlayers: info.CurrentPlayers,
		MaxPlayers:     info.MaxPlayers,
	}
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

// RoomListFromModel converts a slice of model.RoomInfo
func RoomListFromModel(infos []model.RoomInfo) RoomList {
	rooms := make([]RoomInfo, len(infos))
	for i, info := range infos {
		rooms[i] = RoomInfoFromModel(info)
	}
	return RoomList{Rooms: rooms}
}

// Character represents a player's in-room avatar
type Character struct {
	ID        string          `json:"id"`
	PlayerID  string          `json:"player_id"`
	Name      string          `json:"name"`
	Transform model.Transform `json:"transform"`
	Stats     model.Stats     `json:"stats"`
}

// CharacterFromModel converts a model.PlayerCharacter
func CharacterFromModel(c *model.PlayerCharacter) Character {
	return Character{
		ID:        string(c.ID),
		PlayerID:  string(c.PlayerID),
		Name:      c.Name,
		Transform: c.Transform,
		Stats:     c.Stats,
	}
}

// Room represents a room with its members in API responses
type Room struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Capacity  int         `json:"capacity"`
	Players   []Character `json:"players"`
	CreatedAt time.Time   `json:"created_at"`
}

// RoomFromModel converts a model.Room with its member characters
func RoomFromModel(r *model.Room, members []*model.PlayerCharacter) Room {
	players := make([]Character, len(members))
	for i, m := range members {
		players[i] = CharacterFromModel(m)
	}
	return Room{
		ID:        string(r.ID),
		Name:      r.Name,
		Capacity:  r.Capacity,
		Players:   players,
		CreatedAt: r.CreatedAt,
	}
}

// JoinResult is the response after joining a room
type JoinResult struct {
	Joined bool     `json:"joined"`
	Room   RoomInfo `json:"room"`
}
