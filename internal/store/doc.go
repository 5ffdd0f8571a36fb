// Package store provides persistent storage for guildcore using SQLite.
//
// # Data Models
//
//   - GuildProperties: per-guild configuration document (id, targets,
//     booleanConfig). Exactly one per guild, created at bootstrap or via
//     RegisterGuildIfMissing, never deleted.
//   - GlobalProperties: process-wide singleton (startTime, shopLastUpdate).
//   - VitalStat: singleton statistic record (weight) shown in bot status.
//   - User: known user with a persisted AccessLevel.
//   - ConfigAuditEntry: log of guild config mutations issued by operators.
//
// # Boolean Config Contract
//
// A guild document's booleanConfig map is the source of truth at read time,
// not the build-time catalog in package registry:
//
//   - RegisterGuild seeds every catalog key with its declared default.
//   - AddBooleanConfig is the only path that introduces new keys; it never
//     overwrites an existing value, so catalog additions backfill old
//     documents without clobbering operator-set values.
//   - GetBooleanConfig and SetBooleanConfig fail with ErrUnknownConfigKey
//     for keys absent from the document, regardless of catalog membership.
//     Extra legacy keys on a document are tolerated, never pruned.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Targets and the boolean config map are stored as JSON text columns whose
// keys preserve the original document field names.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: record or singleton absent (also: target not on the list)
//   - ErrAlreadyExists: duplicate creation through a non-guarded path
//   - ErrUnknownConfigKey: config key absent from the specific document
//
// All methods accept context.Context.
//
// # Testing
//
// Use NewMockStore() for unit tests without SQLite, or
// NewSQLiteStore(":memory:") for integration tests with real SQLite.
package store
