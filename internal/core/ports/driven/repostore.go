package driven

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// RepoStore persists repository registrations.
type RepoStore interface {
	// Register creates a registration. Returns domain.ErrAlreadyExists if the URL is known.
	Register(ctx context.Context, url string) (*domain.RepoRegistration, error)

	// Get retrieves a registration by ID.
	Get(ctx context.Context, id int64) (*domain.RepoRegistration, error)

	// GetByURL retrieves a registration by URL.
	GetByURL(ctx context.Context, url string) (*domain.RepoRegistration, error)

	// List returns all registrations ordered by ID.
	List(ctx context.Context) ([]domain.RepoRegistration, error)

	// RecordSync stamps the sync time and count, creating the registration
	// if it does not exist yet.
	RecordSync(ctx context.Context, url string, count int) error

	// SetEnabled toggles whether the registration takes part in SyncAll.
	SetEnabled(ctx context.Context, id int64, enabled bool) error

	// Delete removes the registration and every workflow in its origin group.
	// Returns the number of workflows removed.
	Delete(ctx context.Context, id int64) (int, error)
}
