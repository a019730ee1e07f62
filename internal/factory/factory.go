package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/example/gamehub/internal/dependencies/clock"
	"github.com/example/gamehub/internal/dependencies/random"
	"github.com/example/gamehub/internal/services/auth"
	"github.com/example/gamehub/internal/services/player"
	"github.com/example/gamehub/internal/services/registry"
	"github.com/example/gamehub/internal/services/room"
	"github.com/example/gamehub/internal/services/session"
	"github.com/example/gamehub/internal/storage"
	"github.com/example/gamehub/internal/storage/memory"
	redisstorage "github.com/example/gamehub/internal/storage/redis"
	"github.com/example/gamehub/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	PlayerDirectory *player.Directory
	RoomRegistry    *registry.Registry
	SessionManager  *session.Manager
	RoomCoordinator *room.Controller
	AuthService     *auth.Service
	Hub             *ws.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// RegistryConfig holds room registry settings (optional)
	RegistryConfig registry.Config
	// SessionConfig holds session manager settings (optional)
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Fill in config defaults
	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	registryCfg := cfg.RegistryConfig
	if registryCfg.DefaultCapacity == 0 {
		registryCfg = registry.DefaultConfig()
	}
	sessionCfg := cfg.SessionConfig
	if sessionCfg.HeartbeatTimeout == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, registryCfg, sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	registryCfg registry.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	// Create services
	directory := player.New(store, clk, logger)
	roomRegistry := registry.New(store, clk, registryCfg, logger)
	sessions := session.NewManager(clk, sessionCfg, logger)
	authService := auth.New(directory, clk, rnd, authCfg, logger)
	hub := ws.NewHub(logger)
	coordinator := room.NewController(roomRegistry, directory, sessions, hub, clk, logger)

	// Expired sessions leave their rooms through the coordinator. Wired
	// after construction since the coordinator depends on the manager.
	sessions.SetCleanup(coordinator.CleanupSession)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		PlayerDirectory: directory,
		RoomRegistry:    roomRegistry,
		SessionManager:  sessions,
		RoomCoordinator: coordinator,
		AuthService:     authService,
		Hub:             hub,
	}
}
