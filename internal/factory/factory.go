package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/benmooo/ll-xq/internal/config"
	"github.com/benmooo/ll-xq/internal/dependencies/clock"
	"github.com/benmooo/ll-xq/internal/dependencies/idgen"
	"github.com/benmooo/ll-xq/internal/engine"
	"github.com/benmooo/ll-xq/internal/eventbus"
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/services/room"
	"github.com/benmooo/ll-xq/internal/session"
	"github.com/benmooo/ll-xq/internal/storage"
	"github.com/benmooo/ll-xq/internal/storage/memory"
	redisstorage "github.com/benmooo/ll-xq/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage archives finished games
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	Bus         *room.Bus
	RoomManager *room.Manager
	Session     *session.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Rooms holds presence timings (optional)
	// If zero value, defaults to room.DefaultConfig()
	Rooms room.Config
	// SubscriberBuffer is the per-subscription event queue size (optional)
	SubscriberBuffer int
}

// ConfigFrom translates loaded configuration into factory settings
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		Rooms: room.Config{
			PresenceTimeout: cfg.Rooms.PresenceTimeout,
			DestroyDelay:    cfg.Rooms.DestroyDelay,
			SweepInterval:   cfg.Rooms.SweepInterval,
		},
		SubscriberBuffer: cfg.Rooms.SubscriberBuffer,
	}
	if cfg.Storage.Type == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		if cfg.Storage.ResultTTL > 0 {
			redisCfg.ResultTTL = cfg.Storage.ResultTTL
		}
		out.RedisConfig = &redisCfg
	}
	return out
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

	// Use default room timings if not provided
	roomCfg := cfg.Rooms
	if roomCfg.PresenceTimeout == 0 {
		roomCfg = room.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), idgen.New(), roomCfg, cfg.SubscriberBuffer, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, ids idgen.Generator, roomCfg room.Config, buffer int, logger *slog.Logger) *App {
	bus := eventbus.New[model.RoomEvent](logger)
	manager := room.NewManager(engine.XiangqiFactory(), bus, store, clk, ids, roomCfg, logger)
	handler := session.NewHandler(manager, bus, store, buffer, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		IDs:         ids,
		Bus:         bus,
		RoomManager: manager,
		Session:     handler,
	}
}

// Close releases every room and the storage backend
func (a *App) Close() error {
	a.RoomManager.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
