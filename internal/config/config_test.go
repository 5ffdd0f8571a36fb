package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/guildcore.db"
default_users:
  ids:
    - "u1"
    - "u2"
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/guildcore.db", cfg.Database.Path)
	assert.Equal(t, []string{"u1", "u2"}, cfg.DefaultUsers.IDs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("GUILDCORE_DB_PATH", "/var/lib/guildcore/store.db")
	path := writeConfig(t, `
database:
  path: "${GUILDCORE_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/guildcore/store.db", cfg.Database.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "info"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path")
}

func TestLoad_EmptySeedID(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/guildcore.db"
default_users:
  ids:
    - "u1"
    - ""
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_users.ids[1]")
}

func TestLoad_BadLogLevel(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/guildcore.db"
logging:
  level: "verbose"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
