package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/flowhub/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// DatabaseFile is the file name of the catalogue database inside the data directory.
const DatabaseFile = "flowhub.db"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises write transactions within the process so that
	// concurrent writers queue here instead of failing with SQLITE_BUSY.
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.flowhub/flowhub.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".flowhub")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Pragmas in the DSN apply to every pooled connection, not just the first.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	n, err := s.WorkflowStore().BackfillMemberships(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("backfilling memberships: %w", err)
	}
	if n > 0 {
		logger.Info("Rebuilt membership rows for %d workflows", n)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WorkflowStore returns a WorkflowStore interface backed by this store.
func (s *Store) WorkflowStore() driven.WorkflowStore {
	return &workflowStore{store: s}
}

// RepoStore returns a RepoStore interface backed by this store.
func (s *Store) RepoStore() driven.RepoStore {
	return &repoStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate applies all pending migrations.
func (s *Store) migrate() error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	// The migrator is not closed: closing it would close the shared *sql.DB.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// writeTx runs fn inside a write transaction. The transaction is rolled
// back on any error, including a panic in fn.
func (s *Store) writeTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// readTx runs fn inside a transaction so that multi-statement reads
// observe a single snapshot.
func (s *Store) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	return fn(tx)
}
