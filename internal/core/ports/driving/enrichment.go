package driving

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// EnrichmentService is the write interface used by the external enrichment
// collaborator. The core never computes enrichment values itself.
type EnrichmentService interface {
	// ApplyEnrichment overwrites a workflow's enrichment block and refreshes
	// its search-index row.
	ApplyEnrichment(ctx context.Context, id int64, enrichment domain.Enrichment) error

	// ListUnenriched returns up to limit workflows awaiting enrichment.
	ListUnenriched(ctx context.Context, limit int) ([]domain.Workflow, error)
}
