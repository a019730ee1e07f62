package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case RoomInfo:
		o.printRoomInfo(v)
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case JoinResult:
		o.printJoinResult(v)
	case []Character:
		o.printCharacters(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Level       int       `json:"level"`
	Experience  int       `json:"experience"`
	Currency    int       `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RoomInfo response type
type RoomInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CurrentPlayers int    `json:"current_players"`
	MaxPlayers     int    `json:"max_players"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

// Character response type
type Character struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Stats    struct {
		Level     int `json:"level"`
		Health    int `json:"health"`
		MaxHealth int `json:"max_health"`
		Mana      int `json:"mana"`
		MaxMana   int `json:"max_mana"`
	} `json:"stats"`
}

// Room response type
type Room struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Capacity  int         `json:"capacity"`
	Players   []Character `json:"players"`
	CreatedAt time.Time   `json:"created_at"`
}

// JoinResult response type
type JoinResult struct {
	Joined bool     `json:"joined"`
	Room   RoomInfo `json:"room"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Username, p.ID)
	fmt.Printf("Level: %d (%d XP)\n", p.Level, p.Experience)
	fmt.Printf("Currency: %d\n", p.Currency)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.Token)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRoomInfo(r RoomInfo) {
	fmt.Printf("Room: %s (%s)\n", r.Name, r.ID)
	fmt.Printf("Players: %d/%d\n", r.CurrentPlayers, r.MaxPlayers)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No active rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		fmt.Printf("  - %s (%s) %d/%d\n", r.Name, r.ID, r.CurrentPlayers, r.MaxPlayers)
	}
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s (%s)\n", r.Name, r.ID)
	fmt.Printf("Capacity: %d\n", r.Capacity)
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, c := range r.Players {
		fmt.Printf("  - %s (%s) lvl %d, %d/%d HP\n",
			c.Name, c.PlayerID, c.Stats.Level, c.Stats.Health, c.Stats.MaxHealth)
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Printf("Joined room %s (%s)\n", j.Room.Name, j.Room.ID)
	fmt.Printf("Players: %d/%d\n", j.Room.CurrentPlayers, j.Room.MaxPlayers)
}

func (o *Output) printCharacters(chars []Character) {
	if len(chars) == 0 {
		fmt.Println("No players in room")
		return
	}
	fmt.Printf("Players (%d):\n", len(chars))
	for _, c := range chars {
		fmt.Printf("  - %s (%s) lvl %d\n", c.Name, c.PlayerID, c.Stats.Level)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
