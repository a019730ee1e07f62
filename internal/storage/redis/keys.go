package redis

import "github.com/example/gamehub/internal/model"

// Key prefixes for each record type. The username index maps a username to
// its player id; the room index set holds the keys of all live rooms so
// listings avoid a SCAN.
const (
	playerKeyPrefix   = "gamehub:player:"
	usernameKeyPrefix = "gamehub:username:"
	roomKeyPrefix     = "gamehub:room:"
	roomIndexSetKey   = "gamehub:rooms"
)

func playerKey(id model.PlayerID) string {
	return playerKeyPrefix + string(id)
}

func usernameIndexKey(username string) string {
	return usernameKeyPrefix + username
}

func roomKey(id model.RoomID) string {
	return roomKeyPrefix + string(id)
}
