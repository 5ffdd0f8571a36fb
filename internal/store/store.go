// ABOUTME: Store interface and data types for guildcore persistence
// ABOUTME: Defines guild property documents, singleton records and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating a record that is already present
var ErrAlreadyExists = errors.New("already exists")

// ErrUnknownConfigKey is returned when reading or writing a boolean config
// key that is absent from the guild's document
var ErrUnknownConfigKey = errors.New("unknown config key")

// AccessLevel is an ordered privilege tier for a user. Higher values grant
// more commands; enforcement lives in the command pipeline, the store only
// persists the level.
type AccessLevel int

const (
	AccessLevelDefault       AccessLevel = 0
	AccessLevelAdministrator AccessLevel = 1
	AccessLevelDeveloper     AccessLevel = 2
)

// GuildProperties is the persisted configuration document for one guild.
// The JSON field names are part of the storage contract.
type GuildProperties struct {
	ID            string          `json:"id"`
	Targets       []string        `json:"targets"`
	BooleanConfig map[string]bool `json:"booleanConfig"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// GlobalProperties is the process-wide singleton record.
type GlobalProperties struct {
	StartTime      time.Time `json:"startTime"`
	ShopLastUpdate time.Time `json:"shopLastUpdate"`
}

// VitalStat is the singleton statistic record displayed in the bot status.
type VitalStat struct {
	Weight float64 `json:"weight"`
}

// DefaultVitalStatWeight seeds the vital stat record at bootstrap.
const DefaultVitalStatWeight = 0

// User is a known user with a persisted access level.
type User struct {
	ID          string      `json:"id"`
	AccessLevel AccessLevel `json:"accessLevel"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Store defines the persistence interface for guild configuration,
// singleton records and the privileged-user roster.
type Store interface {
	// Guild properties
	RegisterGuild(ctx context.Context, id string) (*GuildProperties, error)
	RegisterGuildIfMissing(ctx context.Context, id string) (*GuildProperties, error)
	GetGuildByID(ctx context.Context, id string) (*GuildProperties, error)
	ListGuilds(ctx context.Context) ([]*GuildProperties, error)
	AddTarget(ctx context.Context, guildID, target string) (*GuildProperties, error)
	RemoveTarget(ctx context.Context, guildID, target string) (*GuildProperties, error)
	BooleanConfigExists(ctx context.Context, guildID, key string) (bool, error)
	AddBooleanConfig(ctx context.Context, guildID, key string, initial bool) error
	GetBooleanConfig(ctx context.Context, guildID, key string) (bool, error)
	SetBooleanConfig(ctx context.Context, guildID, key string, value bool) (*GuildProperties, error)

	// Global properties singleton
	GetGlobalProperties(ctx context.Context) (*GlobalProperties, error)
	CreateDefaultGlobalProperties(ctx context.Context, now time.Time) error

	// Vital statistic singleton
	GetVitalStat(ctx context.Context) (*VitalStat, error)
	CreateDefaultVitalStat(ctx context.Context) error

	// Users
	GetUser(ctx context.Context, id string) (*User, error)
	CountUsersByAccessLevel(ctx context.Context, level AccessLevel) (int, error)
	CreateUser(ctx context.Context, user *User) error
	CreateUsersForIDs(ctx context.Context, ids []string) error

	// Config audit log
	AppendConfigAudit(ctx context.Context, e *ConfigAuditEntry) error
	ListConfigAudit(ctx context.Context, guildID string, limit int) ([]*ConfigAuditEntry, error)

	// Close releases any resources held by the store
	Close() error
}
