package driven

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// WorkflowStore persists workflow records together with their derived
// membership rows and search-index row. Every mutation keeps all three
// consistent inside a single transaction.
type WorkflowStore interface {
	// InsertChunk stores a chunk of parsed workflows in one transaction.
	// Outcomes are returned in input order; a fingerprint already present
	// (in the store or earlier in the chunk) yields a duplicate outcome.
	// Any other failure rolls back the whole chunk.
	InsertChunk(ctx context.Context, chunk []domain.ParsedWorkflow) ([]domain.InsertOutcome, error)

	// Get retrieves a workflow by ID, including its raw content.
	Get(ctx context.Context, id int64) (*domain.Workflow, error)

	// Delete removes a workflow, its membership rows and its index row.
	Delete(ctx context.Context, id int64) error

	// Rename changes a workflow's display name and reindexes it.
	Rename(ctx context.Context, id int64, name string) error

	// ApplyEnrichment overwrites the enrichment block and reindexes the record.
	// A non-empty SuggestedName replaces a generic current name.
	ApplyEnrichment(ctx context.Context, id int64, enrichment domain.Enrichment) error

	// ListUnenriched returns up to limit workflows never enriched, oldest first.
	ListUnenriched(ctx context.Context, limit int) ([]domain.Workflow, error)

	// Search runs a faceted, paginated query.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchPage, error)

	// ListNodeTypes returns all known node-type names in alphabetical order.
	ListNodeTypes(ctx context.Context) ([]string, error)

	// ListCategories returns all known category names in alphabetical order.
	ListCategories(ctx context.Context) ([]string, error)

	// Stats summarises the catalogue.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// BackfillMemberships rebuilds membership rows from stored records when
	// the membership tables are empty. Returns the number of records processed.
	BackfillMemberships(ctx context.Context) (int, error)

	// RebuildSearchIndex retracts and reinserts every index row.
	RebuildSearchIndex(ctx context.Context) (int, error)

	// Verify audits records against their membership and index rows.
	Verify(ctx context.Context) (*domain.ConsistencyReport, error)
}
