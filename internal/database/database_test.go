package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightbus/guildcore/internal/bootstrap"
	"github.com/nightbus/guildcore/internal/store"
)

type recordingStatus struct {
	texts []string
}

func (r *recordingStatus) SetStatus(text string) {
	r.texts = append(r.texts, text)
}

func staticGuilds(ids ...string) bootstrap.GuildLister {
	return bootstrap.GuildListerFunc(func(ctx context.Context) ([]string, error) {
		return ids, nil
	})
}

func TestCore_OpenReachesReady(t *testing.T) {
	status := &recordingStatus{}
	core := New(Options{
		SeedUserIDs: []string{"u1"},
		Guilds:      staticGuilds("g1"),
		Status:      status,
		OpenStore: func() (store.Store, error) {
			return store.NewMockStore(), nil
		},
	})

	assert.Equal(t, StateDisconnected, core.State())
	assert.False(t, core.Ready())

	require.NoError(t, core.Open(context.Background()))
	assert.Equal(t, StateReady, core.State())
	assert.True(t, core.Ready())

	// Status text was published exactly once from the vital stat
	require.Len(t, status.texts, 1)
	assert.Equal(t, "weight: 0.0000kg", status.texts[0])

	// Bootstrap actually seeded the store
	guild, err := core.Store().GetGuildByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotEmpty(t, guild.BooleanConfig)
}

func TestCore_ConnectionErrorAbortsOpen(t *testing.T) {
	core := New(Options{
		OpenStore: func() (store.Store, error) {
			return nil, errors.New("store unreachable")
		},
	})

	err := core.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, core.State())
	assert.False(t, core.Ready())
	assert.Nil(t, core.Store())
}

func TestCore_BootstrapFailureAbortsReadiness(t *testing.T) {
	failing := bootstrap.GuildListerFunc(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("transport down")
	})
	core := New(Options{
		Guilds: failing,
		OpenStore: func() (store.Store, error) {
			return store.NewMockStore(), nil
		},
	})

	err := core.Open(context.Background())
	require.Error(t, err)
	assert.False(t, core.Ready())
	assert.Equal(t, StateDisconnected, core.State())
}

func TestCore_CloseIsTerminalUntilReopened(t *testing.T) {
	core := New(Options{
		OpenStore: func() (store.Store, error) {
			return store.NewMockStore(), nil
		},
	})

	require.NoError(t, core.Open(context.Background()))
	require.True(t, core.Ready())

	require.NoError(t, core.Close())
	assert.Equal(t, StateClosed, core.State())
	assert.False(t, core.Ready())

	// No automatic reconnect; a fresh Open recovers
	require.NoError(t, core.Open(context.Background()))
	assert.True(t, core.Ready())
}

func TestCore_DoubleOpenRejected(t *testing.T) {
	core := New(Options{
		OpenStore: func() (store.Store, error) {
			return store.NewMockStore(), nil
		},
	})

	require.NoError(t, core.Open(context.Background()))
	err := core.Open(context.Background())
	require.Error(t, err)
	assert.True(t, core.Ready(), "failed re-open must not disturb the ready store")
}

func TestCore_SQLiteEndToEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "core.db")
	status := &recordingStatus{}
	core := New(Options{
		DatabasePath: dbPath,
		SeedUserIDs:  []string{"u1", "u2"},
		Guilds:       staticGuilds("g1"),
		Status:       status,
	})

	require.NoError(t, core.Open(context.Background()))
	t.Cleanup(func() { core.Close() })

	count, err := core.Store().CountUsersByAccessLevel(context.Background(), store.AccessLevelDeveloper)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, status.texts, 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "closed", StateClosed.String())
}
