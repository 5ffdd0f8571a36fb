// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides guild/singleton persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS guild_properties (
			id             TEXT PRIMARY KEY,
			targets        TEXT NOT NULL DEFAULT '[]',
			boolean_config TEXT NOT NULL DEFAULT '{}',
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);

		-- singleton: at most one row, enforced by the fixed id
		CREATE TABLE IF NOT EXISTS global_properties (
			id               INTEGER PRIMARY KEY CHECK (id = 1),
			start_time       TEXT NOT NULL,
			shop_last_update TEXT NOT NULL
		);

		-- singleton: at most one row, enforced by the fixed id
		CREATE TABLE IF NOT EXISTS vital_stats (
			id     INTEGER PRIMARY KEY CHECK (id = 1),
			weight REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			access_level INTEGER NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_access_level ON users(access_level);

		CREATE TABLE IF NOT EXISTS config_audit (
			audit_id   TEXT PRIMARY KEY,
			guild_id   TEXT NOT NULL,
			actor_id   TEXT NOT NULL,
			action     TEXT NOT NULL,
			config_key TEXT,
			value      TEXT,
			ts         TEXT NOT NULL,

			CHECK (action IN ('set_config', 'add_target', 'remove_target'))
		);

		CREATE INDEX IF NOT EXISTS idx_config_audit_guild ON config_audit(guild_id, ts);
	`

	_, err := s.db.Exec(schema)
	return err
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
