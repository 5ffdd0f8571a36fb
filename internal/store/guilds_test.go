package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightbus/guildcore/internal/registry"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestRegisterGuild(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	guild, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", guild.ID)
	assert.Empty(t, guild.Targets)

	// Every catalog key must be present with its default
	for _, k := range registry.Keys() {
		value, ok := guild.BooleanConfig[k.Name]
		require.True(t, ok, "missing key %s", k.Name)
		assert.Equal(t, k.Default, value, k.Name)
	}

	// Round-trip through the database
	retrieved, err := store.GetGuildByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, guild.BooleanConfig, retrieved.BooleanConfig)
	assert.Equal(t, []string{}, retrieved.Targets)
}

func TestRegisterGuild_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	_, err = store.RegisterGuild(ctx, "g1")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterGuildIfMissing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.RegisterGuildIfMissing(ctx, "g1")
	require.NoError(t, err)

	// Mutate, then re-register: the existing document must be returned
	_, err = store.SetBooleanConfig(ctx, "g1", registry.Names()[0], true)
	require.NoError(t, err)

	second, err := store.RegisterGuildIfMissing(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.BooleanConfig[registry.Names()[0]], "re-register must not reset values")
}

func TestGetGuildByID_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetGuildByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListGuilds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	guilds, err := store.ListGuilds(ctx)
	require.NoError(t, err)
	assert.Empty(t, guilds)

	_, err = store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)
	_, err = store.RegisterGuild(ctx, "g2")
	require.NoError(t, err)

	guilds, err = store.ListGuilds(ctx)
	require.NoError(t, err)
	assert.Len(t, guilds, 2)
}

func TestAddRemoveTarget_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	guild, err := store.AddTarget(ctx, "g1", "channel-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1"}, guild.Targets)

	guild, err = store.AddTarget(ctx, "g1", "channel-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1", "channel-2"}, guild.Targets)

	guild, err = store.RemoveTarget(ctx, "g1", "channel-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1"}, guild.Targets)
}

func TestAddTarget_DuplicatesAllowed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	_, err = store.AddTarget(ctx, "g1", "channel-1")
	require.NoError(t, err)
	guild, err := store.AddTarget(ctx, "g1", "channel-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1", "channel-1"}, guild.Targets)

	// Removing takes the first occurrence only
	guild, err = store.RemoveTarget(ctx, "g1", "channel-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1"}, guild.Targets)
}

func TestRemoveTarget_Absent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)
	_, err = store.AddTarget(ctx, "g1", "channel-1")
	require.NoError(t, err)

	_, err = store.RemoveTarget(ctx, "g1", "never-added")
	assert.ErrorIs(t, err, ErrNotFound)

	// The list must be untouched
	guild, err := store.GetGuildByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"channel-1"}, guild.Targets)
}

func TestSetBooleanConfig_ReadAfterWrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	key := registry.Names()[0]
	_, err = store.SetBooleanConfig(ctx, "g1", key, true)
	require.NoError(t, err)

	value, err := store.GetBooleanConfig(ctx, "g1", key)
	require.NoError(t, err)
	assert.True(t, value)

	_, err = store.SetBooleanConfig(ctx, "g1", key, false)
	require.NoError(t, err)

	value, err = store.GetBooleanConfig(ctx, "g1", key)
	require.NoError(t, err)
	assert.False(t, value)
}

func TestBooleanConfig_UnknownKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	_, err = store.GetBooleanConfig(ctx, "g1", "unknownKey")
	assert.ErrorIs(t, err, ErrUnknownConfigKey)

	_, err = store.SetBooleanConfig(ctx, "g1", "unknownKey", true)
	assert.ErrorIs(t, err, ErrUnknownConfigKey)

	exists, err := store.BooleanConfigExists(ctx, "g1", "unknownKey")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddBooleanConfig_NeverOverwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	key := registry.Names()[0]

	// Key already exists as false; adding with true must not change it
	err = store.AddBooleanConfig(ctx, "g1", key, true)
	require.NoError(t, err)
	value, err := store.GetBooleanConfig(ctx, "g1", key)
	require.NoError(t, err)
	assert.False(t, value)

	// A genuinely new key is inserted with the initial value
	err = store.AddBooleanConfig(ctx, "g1", "legacyKey", true)
	require.NoError(t, err)
	value, err = store.GetBooleanConfig(ctx, "g1", "legacyKey")
	require.NoError(t, err)
	assert.True(t, value)

	// Second add is a no-op with respect to the stored value
	err = store.AddBooleanConfig(ctx, "g1", "legacyKey", false)
	require.NoError(t, err)
	value, err = store.GetBooleanConfig(ctx, "g1", "legacyKey")
	require.NoError(t, err)
	assert.True(t, value)
}

func TestBooleanConfig_DocumentIsSourceOfTruth(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.RegisterGuild(ctx, "g1")
	require.NoError(t, err)

	// A key outside the catalog, added through the backfill path, is
	// readable and settable like any other document key.
	require.NoError(t, store.AddBooleanConfig(ctx, "g1", "retiredKey", false))

	exists, err := store.BooleanConfigExists(ctx, "g1", "retiredKey")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.SetBooleanConfig(ctx, "g1", "retiredKey", true)
	require.NoError(t, err)

	value, err := store.GetBooleanConfig(ctx, "g1", "retiredKey")
	require.NoError(t, err)
	assert.True(t, value)
}

func TestGuildOps_UnregisteredGuild(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.AddTarget(ctx, "nope", "channel-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.RemoveTarget(ctx, "nope", "channel-1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.AddBooleanConfig(ctx, "nope", "antiSpam", false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetBooleanConfig(ctx, "nope", "antiSpam")
	assert.ErrorIs(t, err, ErrNotFound)
}
