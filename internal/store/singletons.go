// ABOUTME: Singleton record and user roster operations for the SQLite store
// ABOUTME: Global properties, the vital statistic and privileged-user creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetGlobalProperties returns the global properties singleton.
// Returns ErrNotFound if it has not been created yet.
func (s *SQLiteStore) GetGlobalProperties(ctx context.Context) (*GlobalProperties, error) {
	query := `SELECT start_time, shop_last_update FROM global_properties WHERE id = 1`

	var startStr, shopStr string
	err := s.db.QueryRowContext(ctx, query).Scan(&startStr, &shopStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying global properties: %w", err)
	}

	var gp GlobalProperties
	gp.StartTime, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	gp.ShopLastUpdate, err = time.Parse(time.RFC3339, shopStr)
	if err != nil {
		return nil, fmt.Errorf("parsing shop_last_update: %w", err)
	}
	return &gp, nil
}

// CreateDefaultGlobalProperties creates the global properties singleton with
// both timestamps set to now. The caller is responsible for checking absence
// first; creating it twice returns ErrAlreadyExists.
func (s *SQLiteStore) CreateDefaultGlobalProperties(ctx context.Context, now time.Time) error {
	query := `INSERT INTO global_properties (id, start_time, shop_last_update) VALUES (1, ?, ?)`

	ts := now.UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query, ts, ts)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrAlreadyExists
		}
		s.logger.Error("failed to set up global properties document", "error", err)
		return fmt.Errorf("inserting global properties: %w", err)
	}

	s.logger.Info("set up global properties document")
	return nil
}

// GetVitalStat returns the vital statistic singleton.
// Returns ErrNotFound if it has not been created yet.
func (s *SQLiteStore) GetVitalStat(ctx context.Context) (*VitalStat, error) {
	query := `SELECT weight FROM vital_stats WHERE id = 1`

	var vs VitalStat
	err := s.db.QueryRowContext(ctx, query).Scan(&vs.Weight)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying vital stat: %w", err)
	}
	return &vs, nil
}

// CreateDefaultVitalStat creates the vital statistic singleton with its
// default weight. The caller is responsible for checking absence first;
// creating it twice returns ErrAlreadyExists.
func (s *SQLiteStore) CreateDefaultVitalStat(ctx context.Context) error {
	query := `INSERT INTO vital_stats (id, weight) VALUES (1, ?)`

	_, err := s.db.ExecContext(ctx, query, float64(DefaultVitalStatWeight))
	if err != nil {
		if isConstraintViolation(err) {
			return ErrAlreadyExists
		}
		s.logger.Error("failed to set up vital stat document", "error", err)
		return fmt.Errorf("inserting vital stat: %w", err)
	}

	s.logger.Info("set up vital stat document")
	return nil
}

// GetUser retrieves a user record by ID.
// Returns ErrNotFound if the user does not exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, access_level, created_at FROM users WHERE id = ?`

	var user User
	var createdAtStr string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.AccessLevel, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &user, nil
}

// CountUsersByAccessLevel returns the number of users at exactly the given level.
func (s *SQLiteStore) CountUsersByAccessLevel(ctx context.Context, level AccessLevel) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE access_level = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, level).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// CreateUser creates a user record.
// Returns ErrAlreadyExists if a record with the same ID is present.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, access_level, created_at) VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.AccessLevel,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "access_level", user.AccessLevel)
	return nil
}

// CreateUsersForIDs creates one developer-level user record per ID. Each
// insert is attempted independently: one failing ID does not abort the
// rest, and each outcome is logged on its own. An ID that already has a
// record is skipped. The joined failures, if any, are returned after every
// ID has been attempted.
func (s *SQLiteStore) CreateUsersForIDs(ctx context.Context, ids []string) error {
	var errs []error
	saved := 0
	for _, id := range ids {
		err := s.CreateUser(ctx, &User{ID: id, AccessLevel: AccessLevelDeveloper})
		if errors.Is(err, ErrAlreadyExists) {
			s.logger.Debug("dev user already exists", "id", id)
			continue
		}
		if err != nil {
			s.logger.Error("failed to save user", "id", id, "error", err)
			errs = append(errs, fmt.Errorf("creating user %s: %w", id, err))
			continue
		}
		saved++
		s.logger.Info("dev user saved", "id", id, "saved", saved, "total", len(ids))
	}
	return errors.Join(errs...)
}
