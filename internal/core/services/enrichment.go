package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// Score bounds accepted from the enrichment collaborator.
const (
	MinScore = 0
	MaxScore = 10

	// MaxUnenrichedBatch caps ListUnenriched.
	MaxUnenrichedBatch = 500
)

// Ensure EnrichmentService implements the interface.
var _ driving.EnrichmentService = (*EnrichmentService)(nil)

// EnrichmentService applies externally computed enrichment blocks.
type EnrichmentService struct {
	store driven.WorkflowStore
}

// NewEnrichmentService creates a new enrichment service.
func NewEnrichmentService(store driven.WorkflowStore) *EnrichmentService {
	return &EnrichmentService{store: store}
}

// ApplyEnrichment validates and stores an enrichment block.
func (s *EnrichmentService) ApplyEnrichment(ctx context.Context, id int64, e domain.Enrichment) error {
	if id <= 0 {
		return fmt.Errorf("%w: workflow id must be positive", domain.ErrInvalidInput)
	}
	if err := validateEnrichment(e); err != nil {
		return err
	}
	e.SuggestedName = strings.TrimSpace(e.SuggestedName)

	if err := s.store.ApplyEnrichment(ctx, id, e); err != nil {
		return fmt.Errorf("apply enrichment to %d: %w", id, err)
	}
	logger.Debug("Enriched workflow %d (usefulness %d)", id, e.Usefulness)
	return nil
}

// ListUnenriched returns up to limit workflows awaiting enrichment.
func (s *EnrichmentService) ListUnenriched(ctx context.Context, limit int) ([]domain.Workflow, error) {
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	limit = min(limit, MaxUnenrichedBatch)
	return s.store.ListUnenriched(ctx, limit)
}

func validateEnrichment(e domain.Enrichment) error {
	for _, score := range []struct {
		name  string
		value int
	}{
		{"usefulness", e.Usefulness},
		{"universality", e.Universality},
		{"complexity", e.Complexity},
		{"scalability", e.Scalability},
	} {
		if score.value < MinScore || score.value > MaxScore {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d",
				domain.ErrInvalidInput, score.name, MinScore, MaxScore, score.value)
		}
	}
	return nil
}
