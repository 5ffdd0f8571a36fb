// ABOUTME: Startup migrator that seeds required store records before readiness
// ABOUTME: Runs the four record-family checks concurrently and joins their outcomes

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nightbus/guildcore/internal/registry"
	"github.com/nightbus/guildcore/internal/store"
)

// GuildLister reports the guilds the transport layer currently knows about.
// Consulted only during bootstrap; the transport itself is out of scope.
type GuildLister interface {
	GuildIDs(ctx context.Context) ([]string, error)
}

// GuildListerFunc adapts a function to the GuildLister interface.
type GuildListerFunc func(ctx context.Context) ([]string, error)

// GuildIDs implements GuildLister.
func (f GuildListerFunc) GuildIDs(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Migrator seeds the default records for all four record families: the
// privileged-user roster, the global properties singleton, per-guild
// property documents and the vital statistic singleton. Every step is
// idempotent, so the migrator is safe to run on every connection open.
type Migrator struct {
	store   store.Store
	lister  GuildLister
	seedIDs []string
	logger  *slog.Logger
}

// NewMigrator creates a migrator over the given store. seedIDs is the
// configured list of default privileged user IDs; lister supplies the
// guilds known to the transport.
func NewMigrator(s store.Store, lister GuildLister, seedIDs []string) *Migrator {
	return &Migrator{
		store:   s,
		lister:  lister,
		seedIDs: seedIDs,
		logger:  slog.Default().With("component", "bootstrap"),
	}
}

// Run executes all four seeding steps concurrently and waits for every one
// to finish. The steps touch disjoint record families, so they need no
// ordering between them. Each step's failure is surfaced independently in
// the joined error; any failure means the store must not be marked ready.
func (m *Migrator) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"dev users", m.seedDevUsers},
		{"global properties", m.seedGlobalProperties},
		{"guild properties", m.seedGuildProperties},
		{"vital stat", m.seedVitalStat},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(steps))
	for i, step := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := step.fn(ctx); err != nil {
				m.logger.Error("bootstrap step failed", "step", step.name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", step.name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// seedDevUsers compares the developer-level user count against the seed
// list and recreates the full seed list when they differ. Comparing counts
// reproduces the source behavior; IDs already present are skipped by the
// store, so a partial seed tops up rather than duplicating.
func (m *Migrator) seedDevUsers(ctx context.Context) error {
	if len(m.seedIDs) == 0 {
		return nil
	}

	count, err := m.store.CountUsersByAccessLevel(ctx, store.AccessLevelDeveloper)
	if err != nil {
		return err
	}
	if count == len(m.seedIDs) {
		return nil
	}

	m.logger.Warn("dev user models do not match, creating dev profiles",
		"have", count, "want", len(m.seedIDs))
	return m.store.CreateUsersForIDs(ctx, m.seedIDs)
}

// seedGlobalProperties creates the global properties singleton if no record
// exists yet.
func (m *Migrator) seedGlobalProperties(ctx context.Context) error {
	_, err := m.store.GetGlobalProperties(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	m.logger.Warn("global properties document has not been set up, creating default")
	return m.store.CreateDefaultGlobalProperties(ctx, time.Now())
}

// seedGuildProperties ensures every guild known to the transport has a
// property document with every catalog key present. Existing values are
// never overwritten; missing keys are backfilled with catalog defaults.
func (m *Migrator) seedGuildProperties(ctx context.Context) error {
	ids, err := m.lister.GuildIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing known guilds: %w", err)
	}

	for _, id := range ids {
		if _, err := m.store.RegisterGuildIfMissing(ctx, id); err != nil {
			return fmt.Errorf("registering guild %s: %w", id, err)
		}
		for _, k := range registry.Keys() {
			if err := m.store.AddBooleanConfig(ctx, id, k.Name, k.Default); err != nil {
				return fmt.Errorf("backfilling %s on guild %s: %w", k.Name, id, err)
			}
		}
	}
	return nil
}

// seedVitalStat creates the vital statistic singleton if it is absent.
func (m *Migrator) seedVitalStat(ctx context.Context) error {
	_, err := m.store.GetVitalStat(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	m.logger.Warn("vital stat document has not been set up, creating default")
	return m.store.CreateDefaultVitalStat(ctx)
}
