package driving

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// IngestService stores workflow documents exactly once.
type IngestService interface {
	// IngestOne parses and stores a single document.
	// Validation failures are returned as errors wrapping domain.ErrInvalidWorkflow;
	// a fingerprint collision is reported as IngestStatusDuplicate.
	IngestOne(ctx context.Context, raw domain.RawWorkflow) (*domain.IngestResult, error)

	// IngestBatch parses and stores many documents in bounded chunks, one
	// transaction per chunk. Validation failures are counted, not returned.
	// A storage failure aborts the current chunk and is returned together
	// with the totals of the chunks already committed.
	IngestBatch(ctx context.Context, raws []domain.RawWorkflow, opts domain.BatchOptions) (*domain.BatchResult, error)

	// Import fetches every document from origin (a directory or repository URL)
	// and ingests them in chunks.
	Import(ctx context.Context, origin string, opts domain.BatchOptions) (*domain.BatchResult, error)

	// Watch ingests documents pushed by a watchable origin (a local
	// directory) until ctx is cancelled. report, if set, receives every
	// outcome including rejected documents.
	// Returns domain.ErrUnsupportedSource for origins that cannot be watched.
	Watch(ctx context.Context, origin string, report func(domain.IngestResult)) error
}
