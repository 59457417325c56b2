package driving

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// CatalogService provides reads and administrative operations on stored workflows.
type CatalogService interface {
	// Search runs a faceted, paginated query.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchPage, error)

	// Get retrieves a workflow by ID.
	Get(ctx context.Context, id int64) (*domain.Workflow, error)

	// GetRaw returns the stored document text of a workflow verbatim.
	GetRaw(ctx context.Context, id int64) (string, error)

	// Delete removes a workflow with its membership and index rows.
	Delete(ctx context.Context, id int64) error

	// Rename changes a workflow's display name.
	Rename(ctx context.Context, id int64, name string) error

	// ListNodeTypes returns all known node-type names, alphabetically.
	ListNodeTypes(ctx context.Context) ([]string, error)

	// ListCategories returns all known category names, alphabetically.
	ListCategories(ctx context.Context) ([]string, error)

	// Stats summarises the catalogue.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// Verify audits derived rows against the record table.
	Verify(ctx context.Context) (*domain.ConsistencyReport, error)

	// RebuildIndex retracts and reinserts every search-index row.
	RebuildIndex(ctx context.Context) (int, error)
}
