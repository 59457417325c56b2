package driving

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// RepoService manages repository registrations and their synchronisation.
type RepoService interface {
	// Register records a repository URL without importing it.
	Register(ctx context.Context, url string) (*domain.RepoRegistration, error)

	// List returns all registrations.
	List(ctx context.Context) ([]domain.RepoRegistration, error)

	// SetEnabled toggles whether a registration takes part in SyncAll.
	SetEnabled(ctx context.Context, id int64, enabled bool) error

	// Delete removes a registration and every workflow imported from it.
	// Returns the number of workflows removed.
	Delete(ctx context.Context, id int64) (int, error)

	// Sync re-imports one registered repository.
	Sync(ctx context.Context, id int64) (*domain.BatchResult, error)

	// SyncAll re-imports every enabled repository. Failures of one
	// repository do not stop the others.
	SyncAll(ctx context.Context) (map[string]*domain.BatchResult, error)

	// Status returns the progress of a running sync.
	Status(ctx context.Context, id int64) (*SyncStatus, error)
}

// SyncStatus represents the current state of a repository sync.
type SyncStatus struct {
	// RepoID identifies the registration.
	RepoID int64

	// Running indicates if a sync is currently in progress.
	Running bool

	// Imported, Duplicates and Errors are the running totals of the current run.
	Imported   int
	Duplicates int
	Errors     int
}
