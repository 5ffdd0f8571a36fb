// ABOUTME: Entry point for the guildcore bot configuration service
// ABOUTME: Opens the store, runs bootstrap and serves until shutdown

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/nightbus/guildcore/internal/config"
	"github.com/nightbus/guildcore/internal/database"
	"github.com/nightbus/guildcore/internal/store"
)

// Version is set at build time.
var version = "dev"

const banner = `
            _ _     _
  __ _ _   _(_) | __| | ___ ___  _ __ ___
 / _' | | | | | |/ _' |/ __/ _ \| '__/ _ \
| (_| | |_| | | | (_| | (_| (_) | | |  __/
 \__, |\__,_|_|_|\__,_|\___\___/|_|  \___|
 |___/
`

// getConfigPath returns the path to the guildcore config file.
// Priority: GUILDCORE_CONFIG env var > XDG_CONFIG_HOME/guildcore/guildcore.yaml > ~/.config/guildcore/guildcore.yaml
func getConfigPath() string {
	if envPath := os.Getenv("GUILDCORE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "guildcore.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "guildcore", "guildcore.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: guildcore <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the configuration store service")
		fmt.Println("  status    Show store contents summary")
		fmt.Println("  guilds    List guild configuration documents")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "status":
		err = runStatus(ctx)
	case "guilds":
		err = runGuilds(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting guildcore",
		"config", configPath,
		"database", cfg.Database.Path,
		"seed_users", len(cfg.DefaultUsers.IDs),
	)

	core := database.New(database.Options{
		DatabasePath: cfg.Database.Path,
		SeedUserIDs:  cfg.DefaultUsers.IDs,
	})
	if err := core.Open(ctx); err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	logger.Info("store ready")
	<-ctx.Done()

	logger.Info("shutting down")
	return core.Close()
}

func runStatus(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	vs, err := s.GetVitalStat(ctx)
	if err != nil {
		yellow.Println("vital stat: not set up")
	} else {
		green.Print("vital stat: ")
		fmt.Printf("weight %.4fkg\n", vs.Weight)
	}

	gp, err := s.GetGlobalProperties(ctx)
	if err != nil {
		yellow.Println("global properties: not set up")
	} else {
		green.Print("started:    ")
		fmt.Println(gp.StartTime.Format("2006-01-02 15:04:05"))
	}

	devs, err := s.CountUsersByAccessLevel(ctx, store.AccessLevelDeveloper)
	if err != nil {
		return err
	}
	green.Print("dev users:  ")
	fmt.Println(devs)

	guilds, err := s.ListGuilds(ctx)
	if err != nil {
		return err
	}
	green.Print("guilds:     ")
	fmt.Println(len(guilds))
	return nil
}

func runGuilds(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	guilds, err := s.ListGuilds(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	for _, g := range guilds {
		cyan.Println(g.ID)
		if len(g.Targets) > 0 {
			gray.Print("  targets: ")
			fmt.Println(strings.Join(g.Targets, ", "))
		}
		for key, value := range g.BooleanConfig {
			gray.Printf("  %s=", key)
			fmt.Printf("%t\n", value)
		}
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
