package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/api"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/channel"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/clock"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/random"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/services/identity"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/services/session"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/services/timer"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage"
	filestorage "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage/file"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage/memory"
	redisstorage "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// DefaultServerURL is used when Config.ServerURL is empty
const DefaultServerURL = "http://localhost:5000"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Collaborators
	API     *api.Client
	Channel *channel.Manager

	// Services
	Identity *identity.Provider
	Session  *session.Controller

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// ServerURL is the base URL of the REST API
	// If empty, defaults to DefaultServerURL
	ServerURL string
	// SocketURL is the websocket endpoint (optional)
	// If empty, it is derived from ServerURL
	SocketURL string
	// Channel holds websocket timeouts (optional)
	// Zero fields use channel.DefaultConfig()
	Channel channel.Config
	// Timer holds answer countdown settings (optional)
	Timer timer.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// StateDir is where the file backend keeps its state (required if StorageType is "file")
	StateDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var err error
	if cfg, err = cfg.resolve(); err != nil {
		return nil, err
	}

	// Create storage based on type
	var store storage.Storage
	var closers []func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		if cfg.StateDir == "" {
			return nil, errors.New("StateDir required when StorageType is file")
		}
		store = filestorage.New(cfg.StateDir)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	app := newWithDependencies(cfg, store, clock.New(), random.New())
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, store storage.Storage, clk clock.Clock, rnd random.Random) *App {
	logger := cfg.Logger

	apiClient := api.NewClient(cfg.ServerURL, logger)
	manager := channel.NewManager(channel.NewAdapter(cfg.Channel, logger), logger)
	provider := identity.New(apiClient, store, rnd, manager, logger)
	controller := session.NewController(manager, provider, clk, cfg.Timer, logger)

	provider.OnChange(func(id *model.Identity) {
		token := ""
		if id != nil {
			token = id.Token
		}
		apiClient.SetToken(token)

		// the channel was already reset; an idle controller may still hold
		// the lease it kept after a game-error
		controller.ResetGame()
	})

	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		API:      apiClient,
		Channel:  manager,
		Identity: provider,
		Session:  controller,
	}
}

// Start restores a persisted identity, if any
func (a *App) Start(ctx context.Context) (*model.Identity, error) {
	return a.Identity.Restore(ctx)
}

// Close leaves any session and releases external resources
func (a *App) Close() error {
	a.Session.ResetGame()
	a.Channel.Reset()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (c Config) resolve() (Config, error) {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.SocketURL == "" {
		u, err := SocketURLFor(c.ServerURL)
		if err != nil {
			return c, err
		}
		c.SocketURL = u
	}
	c.Channel.URL = c.SocketURL
	return c, nil
}

// SocketURLFor derives the websocket endpoint from the REST base URL
func SocketURLFor(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme", serverURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}
