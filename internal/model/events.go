package model

import "time"

// EventType identifies a push event delivered over a client's channel
type EventType string

const (
	EventRoomJoined   EventType = "room_joined"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventPlayerMoved  EventType = "player_moved"
	EventChatMessage  EventType = "chat_message"
	EventHeartbeatAck EventType = "heartbeat_ack"
	EventError        EventType = "error"
)

// Event is the envelope pushed to connected clients
type Event struct {
	Type     EventType `json:"type"`
	RoomID   RoomID    `json:"room_id,omitempty"`
	PlayerID PlayerID  `json:"player_id,omitempty"`
	Name     string    `json:"name,omitempty"`
	Message  string    `json:"message,omitempty"`
	Position *Vector3  `json:"position,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}
