package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightbus/guildcore/internal/registry"
)

// The mock must mirror the SQLite store's contract for the behaviors the
// bootstrap and command layers rely on.

func TestMockStore_GuildContract(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	guild, err := m.RegisterGuild(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, guild.Targets)
	for _, k := range registry.Keys() {
		assert.Contains(t, guild.BooleanConfig, k.Name)
	}

	_, err = m.RegisterGuild(ctx, "g1")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = m.GetGuildByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.SetBooleanConfig(ctx, "g1", "unknownKey", true)
	assert.ErrorIs(t, err, ErrUnknownConfigKey)

	require.NoError(t, m.AddBooleanConfig(ctx, "g1", registry.Names()[0], true))
	value, err := m.GetBooleanConfig(ctx, "g1", registry.Names()[0])
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultFor(registry.Names()[0]), value, "add must not overwrite")

	_, err = m.RemoveTarget(ctx, "g1", "missing-target")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	_, err := m.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	guild, err := m.GetGuildByID(ctx, "g1")
	require.NoError(t, err)
	guild.BooleanConfig["injected"] = true
	guild.Targets = append(guild.Targets, "injected")

	fresh, err := m.GetGuildByID(ctx, "g1")
	require.NoError(t, err)
	assert.NotContains(t, fresh.BooleanConfig, "injected")
	assert.Empty(t, fresh.Targets)
}

func TestMockStore_Singletons(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	_, err := m.GetVitalStat(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.CreateDefaultVitalStat(ctx))
	assert.ErrorIs(t, m.CreateDefaultVitalStat(ctx), ErrAlreadyExists)

	_, err = m.GetGlobalProperties(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_InjectedUserFailure(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	m.FailUserIDs["u2"] = true

	err := m.CreateUsersForIDs(ctx, []string{"u1", "u2", "u3"})
	require.Error(t, err)

	// Siblings of the failing insert were still attempted
	count, countErr := m.CountUsersByAccessLevel(ctx, AccessLevelDeveloper)
	require.NoError(t, countErr)
	assert.Equal(t, 2, count)
}
