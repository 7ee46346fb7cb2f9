// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - PostStore: normalized post persistence, tag attachment and related links
//   - TagStore: tag persistence
//   - FileStore: file placeholder persistence
//   - SubscriptionStore: subscription and feed persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.fanvault/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Statements run in autocommit mode, so every save is a
// durable commit on its own.
package sqlite
