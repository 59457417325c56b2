package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// Facet cache keys.
const (
	facetKeyNodes      = "facets:nodes"
	facetKeyCategories = "facets:categories"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService serves reads and administrative operations on the catalogue.
type CatalogService struct {
	store           driven.WorkflowStore
	cache           driven.FacetCache
	defaultPageSize int
}

// NewCatalogService creates a new catalog service.
// cache is optional. defaultPageSize applies to queries without a page size.
func NewCatalogService(store driven.WorkflowStore, cache driven.FacetCache, defaultPageSize int) *CatalogService {
	if defaultPageSize <= 0 || defaultPageSize > domain.MaxPageSize {
		defaultPageSize = domain.DefaultPageSize
	}
	return &CatalogService{
		store:           store,
		cache:           cache,
		defaultPageSize: defaultPageSize,
	}
}

// Search runs a faceted, paginated query.
func (s *CatalogService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchPage, error) {
	if s.store == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if query.PageSize <= 0 {
		query.PageSize = s.defaultPageSize
	}
	query.Text = strings.TrimSpace(query.Text)
	query = query.Normalize()

	ctx, span := tracer().Start(ctx, "catalog.search", trace.WithAttributes(
		attribute.String("flowhub.query.text", query.Text),
		attribute.String("flowhub.query.sort", string(query.Sort)),
		attribute.Int("flowhub.query.page", query.Page),
	))
	defer span.End()

	logger.Debug("Search: text=%q category=%q node=%q min=%d page=%d/%d sort=%s",
		query.Text, query.Category, query.NodeType, query.MinScore, query.Page, query.PageSize, query.Sort)

	page, err := s.store.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search: %w", err)
	}
	span.SetAttributes(attribute.Int("flowhub.query.total", page.Total))
	return page, nil
}

// Get retrieves a workflow by ID.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Workflow, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: workflow id must be positive", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// GetRaw returns the stored document text verbatim.
func (s *CatalogService) GetRaw(ctx context.Context, id int64) (string, error) {
	wf, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return wf.RawContent, nil
}

// Delete removes a workflow with its membership and index rows.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: workflow id must be positive", domain.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	logger.Info("Deleted workflow %d", id)
	return nil
}

// Rename changes a workflow's display name.
func (s *CatalogService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if id <= 0 {
		return fmt.Errorf("%w: workflow id must be positive", domain.ErrInvalidInput)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return s.store.Rename(ctx, id, name)
}

// ListNodeTypes returns all known node-type names, alphabetically.
func (s *CatalogService) ListNodeTypes(ctx context.Context) ([]string, error) {
	return s.facet(ctx, facetKeyNodes, s.store.ListNodeTypes)
}

// ListCategories returns all known category names, alphabetically.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.facet(ctx, facetKeyCategories, s.store.ListCategories)
}

// Stats summarises the catalogue.
func (s *CatalogService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return s.store.Stats(ctx)
}

// Verify audits derived rows against the record table.
func (s *CatalogService) Verify(ctx context.Context) (*domain.ConsistencyReport, error) {
	ctx, span := tracer().Start(ctx, "catalog.verify")
	defer span.End()

	report, err := s.store.Verify(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !report.Consistent() {
		logger.Warn("Catalogue drift: %d missing index rows, %d orphan index rows, %d stale memberships",
			len(report.MissingIndex), len(report.OrphanIndex), len(report.StaleMemberships))
	}
	return report, nil
}

// RebuildIndex retracts and reinserts every search-index row.
func (s *CatalogService) RebuildIndex(ctx context.Context) (int, error) {
	ctx, span := tracer().Start(ctx, "catalog.reindex")
	defer span.End()

	n, err := s.store.RebuildSearchIndex(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	logger.Info("Reindexed %d workflows", n)
	return n, nil
}

// facet reads a facet list through the cache.
func (s *CatalogService) facet(
	ctx context.Context, key string, load func(context.Context) ([]string, error),
) ([]string, error) {
	if s.cache != nil {
		if values, ok := s.cache.Get(key); ok {
			return values, nil
		}
	}
	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, values)
	}
	return values, nil
}

func (s *CatalogService) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
