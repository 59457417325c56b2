// Package sqlite provides a SQLite-based implementation of the catalogue's
// driven storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements the store interfaces
// through a single connection pool:
//
//   - WorkflowStore: Records, membership tables and the FTS5 search index
//   - RepoStore: Repository registrations
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory and applied with golang-migrate. Each migration is a
// pair of .up.sql and .down.sql files.
//
// # Consistency
//
// Every mutation runs in one transaction that writes the record, its
// membership rows and its search-index row together. Readers see either
// the state before or after a mutation, never a mix.
//
// # Data Location
//
// By default, the database is stored at ~/.flowhub/flowhub.db
//
// # Thread Safety
//
// All operations are thread-safe. Readers run concurrently in WAL mode;
// writers are serialised within the process.
package sqlite
