// ABOUTME: Config audit log entity and store methods
// ABOUTME: Records who changed which guild setting for operator debugging

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConfigAuditAction represents an auditable guild config mutation.
type ConfigAuditAction string

const (
	AuditSetConfig    ConfigAuditAction = "set_config"
	AuditAddTarget    ConfigAuditAction = "add_target"
	AuditRemoveTarget ConfigAuditAction = "remove_target"
)

// ConfigAuditEntry represents a single config audit log entry.
type ConfigAuditEntry struct {
	ID        string            // UUID v4
	GuildID   string            // guild whose config was mutated
	ActorID   string            // user who issued the command
	Action    ConfigAuditAction // what was done
	ConfigKey string            // config key for set_config, empty otherwise
	Value     string            // new value or target reference
	Timestamp time.Time         // when it happened
}

// AppendConfigAudit appends a new entry to the config audit log.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendConfigAudit(ctx context.Context, e *ConfigAuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO config_audit (audit_id, guild_id, actor_id, action, config_key, value, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.GuildID,
		e.ActorID,
		e.Action,
		nullString(e.ConfigKey),
		nullString(e.Value),
		e.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending config audit entry: %w", err)
	}

	s.logger.Debug("appended config audit entry", "guild", e.GuildID, "action", e.Action, "actor", e.ActorID)
	return nil
}

// ListConfigAudit returns the most recent audit entries for a guild, newest
// first. If limit is 0 or negative, a default limit of 100 is used.
func (s *SQLiteStore) ListConfigAudit(ctx context.Context, guildID string, limit int) ([]*ConfigAuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	query := `
		SELECT audit_id, guild_id, actor_id, action, config_key, value, ts
		FROM config_audit
		WHERE guild_id = ?
		ORDER BY ts DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying config audit: %w", err)
	}
	defer rows.Close()

	var entries []*ConfigAuditEntry
	for rows.Next() {
		var e ConfigAuditEntry
		var key, value sql.NullString
		var tsStr string

		if err := rows.Scan(&e.ID, &e.GuildID, &e.ActorID, &e.Action, &key, &value, &tsStr); err != nil {
			return nil, fmt.Errorf("scanning config audit row: %w", err)
		}

		if key.Valid {
			e.ConfigKey = key.String
		}
		if value.Valid {
			e.Value = value.String
		}
		e.Timestamp, err = time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("parsing ts: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating config audit rows: %w", err)
	}
	return entries, nil
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
