package redis

import "time"

// Config holds Redis connection and expiry settings
type Config struct {
	// URL is the Redis connection URL (redis://...)
	URL string
	// PoolSize is the maximum number of connections
	PoolSize int
	// MinIdleConns is the minimum number of idle connections kept open
	MinIdleConns int

	// PlayerTTL is the expiry for player records (0 = no expiry)
	PlayerTTL time.Duration
	// RoomTTL is the expiry for room records. Rooms are short-lived; the TTL
	// is a backstop against leaked rooms if the coordinator dies mid-cleanup.
	RoomTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		PlayerTTL:    0,
		RoomTTL:      24 * time.Hour,
	}
}
