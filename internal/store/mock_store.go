// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nightbus/guildcore/internal/registry"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	guilds     map[string]*GuildProperties // keyed by guild ID
	guildOrder []string                    // insertion order for ListGuilds
	global     *GlobalProperties
	vitalStat  *VitalStat
	users      map[string]*User // keyed by user ID
	audit      []*ConfigAuditEntry

	// FailUserIDs makes CreateUser fail for the listed IDs, to exercise
	// per-item isolation in bulk creation.
	FailUserIDs map[string]bool
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		guilds:      make(map[string]*GuildProperties),
		users:       make(map[string]*User),
		FailUserIDs: make(map[string]bool),
	}
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)

func copyGuild(g *GuildProperties) *GuildProperties {
	out := *g
	out.Targets = append([]string{}, g.Targets...)
	out.BooleanConfig = make(map[string]bool, len(g.BooleanConfig))
	for k, v := range g.BooleanConfig {
		out.BooleanConfig[k] = v
	}
	return &out
}

// RegisterGuild creates a guild document with catalog defaults.
func (m *MockStore) RegisterGuild(ctx context.Context, id string) (*GuildProperties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.guilds[id]; ok {
		return nil, ErrAlreadyExists
	}

	now := time.Now().UTC()
	g := &GuildProperties{
		ID:            id,
		Targets:       []string{},
		BooleanConfig: make(map[string]bool),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, k := range registry.Keys() {
		g.BooleanConfig[k.Name] = k.Default
	}
	m.guilds[id] = g
	m.guildOrder = append(m.guildOrder, id)
	return copyGuild(g), nil
}

// RegisterGuildIfMissing registers the guild unless it already exists.
func (m *MockStore) RegisterGuildIfMissing(ctx context.Context, id string) (*GuildProperties, error) {
	if g, err := m.GetGuildByID(ctx, id); err == nil {
		return g, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return m.RegisterGuild(ctx, id)
}

// GetGuildByID retrieves a guild document by ID.
func (m *MockStore) GetGuildByID(ctx context.Context, id string) (*GuildProperties, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.guilds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGuild(g), nil
}

// ListGuilds returns all guild documents in insertion order.
func (m *MockStore) ListGuilds(ctx context.Context) ([]*GuildProperties, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*GuildProperties
	for _, id := range m.guildOrder {
		out = append(out, copyGuild(m.guilds[id]))
	}
	return out, nil
}

// AddTarget appends a target to the guild's target list.
func (m *MockStore) AddTarget(ctx context.Context, guildID, target string) (*GuildProperties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	g.Targets = append(g.Targets, target)
	g.UpdatedAt = time.Now().UTC()
	return copyGuild(g), nil
}

// RemoveTarget removes the first occurrence of target from the guild's list.
func (m *MockStore) RemoveTarget(ctx context.Context, guildID, target string) (*GuildProperties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	for i, t := range g.Targets {
		if t == target {
			g.Targets = append(g.Targets[:i], g.Targets[i+1:]...)
			g.UpdatedAt = time.Now().UTC()
			return copyGuild(g), nil
		}
	}
	return nil, ErrNotFound
}

// BooleanConfigExists reports whether key is present on the guild document.
func (m *MockStore) BooleanConfigExists(ctx context.Context, guildID, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return false, ErrNotFound
	}
	_, present := g.BooleanConfig[key]
	return present, nil
}

// AddBooleanConfig inserts key if absent; never overwrites.
func (m *MockStore) AddBooleanConfig(ctx context.Context, guildID, key string, initial bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return ErrNotFound
	}
	if _, present := g.BooleanConfig[key]; present {
		return nil
	}
	g.BooleanConfig[key] = initial
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// GetBooleanConfig returns the stored value for key.
func (m *MockStore) GetBooleanConfig(ctx context.Context, guildID, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return false, ErrNotFound
	}
	v, present := g.BooleanConfig[key]
	if !present {
		return false, ErrUnknownConfigKey
	}
	return v, nil
}

// SetBooleanConfig updates a key that is already present on the document.
func (m *MockStore) SetBooleanConfig(ctx context.Context, guildID, key string, value bool) (*GuildProperties, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, present := g.BooleanConfig[key]; !present {
		return nil, ErrUnknownConfigKey
	}
	g.BooleanConfig[key] = value
	g.UpdatedAt = time.Now().UTC()
	return copyGuild(g), nil
}

// GetGlobalProperties returns the global properties singleton.
func (m *MockStore) GetGlobalProperties(ctx context.Context) (*GlobalProperties, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.global == nil {
		return nil, ErrNotFound
	}
	out := *m.global
	return &out, nil
}

// CreateDefaultGlobalProperties creates the global properties singleton.
func (m *MockStore) CreateDefaultGlobalProperties(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.global != nil {
		return ErrAlreadyExists
	}
	m.global = &GlobalProperties{StartTime: now.UTC(), ShopLastUpdate: now.UTC()}
	return nil
}

// GetVitalStat returns the vital statistic singleton.
func (m *MockStore) GetVitalStat(ctx context.Context) (*VitalStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.vitalStat == nil {
		return nil, ErrNotFound
	}
	out := *m.vitalStat
	return &out, nil
}

// CreateDefaultVitalStat creates the vital statistic singleton.
func (m *MockStore) CreateDefaultVitalStat(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vitalStat != nil {
		return ErrAlreadyExists
	}
	m.vitalStat = &VitalStat{Weight: DefaultVitalStatWeight}
	return nil
}

// GetUser retrieves a user record by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// CountUsersByAccessLevel counts users at exactly the given level.
func (m *MockStore) CountUsersByAccessLevel(ctx context.Context, level AccessLevel) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, u := range m.users {
		if u.AccessLevel == level {
			count++
		}
	}
	return count, nil
}

// CreateUser creates a user record.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUserIDs[user.ID] {
		return fmt.Errorf("injected failure for user %s", user.ID)
	}
	if _, ok := m.users[user.ID]; ok {
		return ErrAlreadyExists
	}
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = &u
	return nil
}

// CreateUsersForIDs creates one developer-level user per ID, attempting each
// independently and joining the failures.
func (m *MockStore) CreateUsersForIDs(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		err := m.CreateUser(ctx, &User{ID: id, AccessLevel: AccessLevelDeveloper})
		if err != nil && !errors.Is(err, ErrAlreadyExists) {
			errs = append(errs, fmt.Errorf("creating user %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// AppendConfigAudit appends an audit entry.
func (m *MockStore) AppendConfigAudit(ctx context.Context, e *ConfigAuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := *e
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.audit = append(m.audit, &entry)
	return nil
}

// ListConfigAudit returns audit entries for a guild, newest first.
func (m *MockStore) ListConfigAudit(ctx context.Context, guildID string, limit int) ([]*ConfigAuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	var out []*ConfigAuditEntry
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audit[i].GuildID == guildID {
			entry := *m.audit[i]
			out = append(out, &entry)
		}
	}
	return out, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
