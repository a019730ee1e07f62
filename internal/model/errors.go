package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidUsername = errors.New("invalid username")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("player is already in room")
	ErrNotInRoom     = errors.New("player is not in room")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionDisconnected = errors.New("session is disconnected")
	ErrSessionUnbound      = errors.New("session has no bound player")
)
