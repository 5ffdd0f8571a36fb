// ABOUTME: Guild property document operations for the SQLite store
// ABOUTME: Registration, target list mutation and boolean config get/set/backfill

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nightbus/guildcore/internal/registry"
)

// RegisterGuild creates the property document for a guild with an empty
// target list and every catalog key set to its declared default.
// Returns ErrAlreadyExists if the guild is already registered.
func (s *SQLiteStore) RegisterGuild(ctx context.Context, id string) (*GuildProperties, error) {
	now := time.Now().UTC()

	booleanConfig := make(map[string]bool)
	for _, k := range registry.Keys() {
		booleanConfig[k.Name] = k.Default
	}

	configJSON, err := json.Marshal(booleanConfig)
	if err != nil {
		return nil, fmt.Errorf("marshaling boolean config: %w", err)
	}

	query := `
		INSERT INTO guild_properties (id, targets, boolean_config, created_at, updated_at)
		VALUES (?, '[]', ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		string(configJSON),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrAlreadyExists
		}
		s.logger.Error("failed to set up guild properties document", "guild", id, "error", err)
		return nil, fmt.Errorf("inserting guild properties: %w", err)
	}

	s.logger.Info("set up guild properties document", "guild", id)
	return &GuildProperties{
		ID:            id,
		Targets:       []string{},
		BooleanConfig: booleanConfig,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RegisterGuildIfMissing registers the guild unless a document already
// exists, in which case the existing document is returned unchanged.
func (s *SQLiteStore) RegisterGuildIfMissing(ctx context.Context, id string) (*GuildProperties, error) {
	guild, err := s.GetGuildByID(ctx, id)
	if err == nil {
		return guild, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	guild, err = s.RegisterGuild(ctx, id)
	if errors.Is(err, ErrAlreadyExists) {
		// Lost a race with a concurrent registration; the document exists now.
		return s.GetGuildByID(ctx, id)
	}
	return guild, err
}

// GetGuildByID retrieves a guild property document.
// Returns ErrNotFound if the guild is not registered.
func (s *SQLiteStore) GetGuildByID(ctx context.Context, id string) (*GuildProperties, error) {
	query := `
		SELECT id, targets, boolean_config, created_at, updated_at
		FROM guild_properties
		WHERE id = ?
	`
	return scanGuild(s.db.QueryRowContext(ctx, query, id))
}

// ListGuilds returns every guild property document.
func (s *SQLiteStore) ListGuilds(ctx context.Context) ([]*GuildProperties, error) {
	query := `
		SELECT id, targets, boolean_config, created_at, updated_at
		FROM guild_properties
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying guilds: %w", err)
	}
	defer rows.Close()

	var guilds []*GuildProperties
	for rows.Next() {
		g, err := scanGuild(rows)
		if err != nil {
			return nil, err
		}
		guilds = append(guilds, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating guild rows: %w", err)
	}
	return guilds, nil
}

// AddTarget appends a target reference to the guild's target list and
// persists it. Duplicates are allowed.
func (s *SQLiteStore) AddTarget(ctx context.Context, guildID, target string) (*GuildProperties, error) {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	guild.Targets = append(guild.Targets, target)
	if err := s.saveGuild(ctx, guild); err != nil {
		s.logger.Error("failed to save guild targets", "guild", guildID, "error", err)
		return nil, err
	}

	s.logger.Debug("added target", "guild", guildID, "target", target)
	return guild, nil
}

// RemoveTarget removes the first occurrence of target from the guild's
// target list. Returns ErrNotFound if the target is not on the list; the
// document is not persisted in that case.
func (s *SQLiteStore) RemoveTarget(ctx context.Context, guildID, target string) (*GuildProperties, error) {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, t := range guild.Targets {
		if t == target {
			index = i
			break
		}
	}
	if index == -1 {
		s.logger.Debug("target does not exist on current guild target list", "guild", guildID, "target", target)
		return nil, ErrNotFound
	}

	guild.Targets = append(guild.Targets[:index], guild.Targets[index+1:]...)
	if err := s.saveGuild(ctx, guild); err != nil {
		s.logger.Error("remove target, failed to save document", "guild", guildID, "error", err)
		return nil, err
	}

	s.logger.Debug("removed target", "guild", guildID, "target", target)
	return guild, nil
}

// BooleanConfigExists reports whether key is present on the guild's
// document, regardless of its value or catalog membership.
func (s *SQLiteStore) BooleanConfigExists(ctx context.Context, guildID, key string) (bool, error) {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return false, err
	}
	_, ok := guild.BooleanConfig[key]
	return ok, nil
}

// AddBooleanConfig inserts key with the given initial value if it is absent
// from the guild's document. An existing value is never overwritten; the
// call is then a no-op. This is the only path that introduces new keys onto
// a document, which is how catalog additions are backfilled onto guilds
// created under an older catalog.
func (s *SQLiteStore) AddBooleanConfig(ctx context.Context, guildID, key string, initial bool) error {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return err
	}

	if _, ok := guild.BooleanConfig[key]; ok {
		return nil
	}

	guild.BooleanConfig[key] = initial
	if err := s.saveGuild(ctx, guild); err != nil {
		s.logger.Error("failed to add new configuration", "guild", guildID, "key", key, "error", err)
		return err
	}

	s.logger.Debug("added boolean config", "guild", guildID, "key", key, "initial", initial)
	return nil
}

// GetBooleanConfig returns the stored value for key.
// Returns ErrUnknownConfigKey if the key is absent from the document.
func (s *SQLiteStore) GetBooleanConfig(ctx context.Context, guildID, key string) (bool, error) {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return false, err
	}

	value, ok := guild.BooleanConfig[key]
	if !ok {
		return false, ErrUnknownConfigKey
	}
	return value, nil
}

// SetBooleanConfig updates the value of a key that is already present on
// the guild's document and persists it. Returns ErrUnknownConfigKey if the
// key is absent; mutation never introduces new keys.
func (s *SQLiteStore) SetBooleanConfig(ctx context.Context, guildID, key string, value bool) (*GuildProperties, error) {
	guild, err := s.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if _, ok := guild.BooleanConfig[key]; !ok {
		return nil, ErrUnknownConfigKey
	}

	guild.BooleanConfig[key] = value
	if err := s.saveGuild(ctx, guild); err != nil {
		s.logger.Error("unable to save configuration", "guild", guildID, "key", key, "error", err)
		return nil, err
	}

	s.logger.Debug("set boolean config", "guild", guildID, "key", key, "value", value)
	return guild, nil
}

// saveGuild persists the targets and boolean config of an existing guild
// document. Returns ErrNotFound if the row has disappeared.
func (s *SQLiteStore) saveGuild(ctx context.Context, guild *GuildProperties) error {
	targetsJSON, err := json.Marshal(guild.Targets)
	if err != nil {
		return fmt.Errorf("marshaling targets: %w", err)
	}
	configJSON, err := json.Marshal(guild.BooleanConfig)
	if err != nil {
		return fmt.Errorf("marshaling boolean config: %w", err)
	}

	guild.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE guild_properties
		SET targets = ?, boolean_config = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		string(targetsJSON),
		string(configJSON),
		guild.UpdatedAt.Format(time.RFC3339),
		guild.ID,
	)
	if err != nil {
		return fmt.Errorf("updating guild properties: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanGuild.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuild(row rowScanner) (*GuildProperties, error) {
	var guild GuildProperties
	var targetsJSON, configJSON, createdAtStr, updatedAtStr string

	err := row.Scan(&guild.ID, &targetsJSON, &configJSON, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning guild row: %w", err)
	}

	if err := json.Unmarshal([]byte(targetsJSON), &guild.Targets); err != nil {
		return nil, fmt.Errorf("parsing targets: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &guild.BooleanConfig); err != nil {
		return nil, fmt.Errorf("parsing boolean config: %w", err)
	}
	if guild.Targets == nil {
		guild.Targets = []string{}
	}
	if guild.BooleanConfig == nil {
		guild.BooleanConfig = map[string]bool{}
	}

	guild.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	guild.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &guild, nil
}
