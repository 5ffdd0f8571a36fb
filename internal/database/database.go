// ABOUTME: Connection lifecycle for the guildcore backing store
// ABOUTME: Tracks Disconnected/Connecting/Bootstrapping/Ready/Closed and gates readiness on bootstrap

package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nightbus/guildcore/internal/bootstrap"
	"github.com/nightbus/guildcore/internal/store"
)

// State is the lifecycle state of the backing store connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateBootstrapping
	StateReady
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StatusSetter receives the bot status text once the store is ready.
// Implemented by the chat transport layer.
type StatusSetter interface {
	SetStatus(text string)
}

// Options configures a Core.
type Options struct {
	// DatabasePath is where the SQLite store lives. Ignored when OpenStore
	// is set.
	DatabasePath string

	// SeedUserIDs is the configured list of default privileged user IDs.
	SeedUserIDs []string

	// Guilds lists the guilds the transport currently knows about.
	Guilds bootstrap.GuildLister

	// Status, when set, receives the status text on reaching Ready.
	Status StatusSetter

	// OpenStore overrides how the backing store is opened. Used by tests.
	OpenStore func() (store.Store, error)
}

// Core owns the process-wide store connection and its lifecycle. All
// components reach the store through an injected Core rather than a global.
type Core struct {
	mu    sync.Mutex
	state State
	store store.Store

	opts   Options
	logger *slog.Logger
}

// New creates a Core in the Disconnected state.
func New(opts Options) *Core {
	if opts.OpenStore == nil {
		path := opts.DatabasePath
		opts.OpenStore = func() (store.Store, error) {
			return store.NewSQLiteStore(path)
		}
	}
	if opts.Guilds == nil {
		opts.Guilds = bootstrap.GuildListerFunc(func(ctx context.Context) ([]string, error) {
			return nil, nil
		})
	}
	return &Core{
		state:  StateDisconnected,
		opts:   opts,
		logger: slog.Default().With("component", "database"),
	}
}

// Open connects the backing store and runs the bootstrap migrator. The
// store is ready only once every bootstrap step has succeeded. A connection
// error fails the call without reaching any other state; a bootstrap
// failure closes the connection again and fails the call.
func (c *Core) Open(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateDisconnected, StateClosed:
		c.state = StateConnecting
	default:
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("store is %s, cannot open", state)
	}
	c.mu.Unlock()

	s, err := c.opts.OpenStore()
	if err != nil {
		c.setState(StateDisconnected)
		c.logger.Error("error connecting to store", "error", err)
		return fmt.Errorf("connecting to store: %w", err)
	}

	c.mu.Lock()
	c.store = s
	c.state = StateBootstrapping
	c.mu.Unlock()

	migrator := bootstrap.NewMigrator(s, c.opts.Guilds, c.opts.SeedUserIDs)
	if err := migrator.Run(ctx); err != nil {
		s.Close()
		c.mu.Lock()
		c.store = nil
		c.state = StateDisconnected
		c.mu.Unlock()
		return fmt.Errorf("bootstrapping store: %w", err)
	}

	c.setState(StateReady)
	c.logger.Info("store connected successfully")

	c.publishStatus(ctx, s)
	return nil
}

// publishStatus reads the vital statistic once and hands the formatted
// status text to the transport. A failed read keeps the store ready.
func (c *Core) publishStatus(ctx context.Context, s store.Store) {
	if c.opts.Status == nil {
		return
	}
	vs, err := s.GetVitalStat(ctx)
	if err != nil {
		c.logger.Error("failed to read vital stat for status", "error", err)
		return
	}
	c.opts.Status.SetStatus(fmt.Sprintf("weight: %.4fkg", vs.Weight))
}

// Ready reports whether the store is connected and fully bootstrapped.
func (c *Core) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// State returns the current lifecycle state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store returns the store handle. Valid only while Bootstrapping or Ready;
// callers must check Ready() before issuing runtime operations.
func (c *Core) Store() store.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// Close closes the store connection and clears readiness. Closed is
// terminal: recovering requires a fresh Open. Closing an already closed or
// never-opened Core is a no-op.
func (c *Core) Close() error {
	c.mu.Lock()
	s := c.store
	c.store = nil
	c.state = StateClosed
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	c.logger.Warn("connection to store closed")
	return s.Close()
}

func (c *Core) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
