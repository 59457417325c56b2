package driven

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// Normaliser turns raw workflow documents into validated metadata.
type Normaliser interface {
	// Normalise parses raw and derives its node, category and trigger metadata.
	// Validation failures wrap domain.ErrInvalidWorkflow.
	Normalise(ctx context.Context, raw domain.RawWorkflow) (*domain.ParsedWorkflow, error)
}
