package mcp

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	page       *domain.SearchPage
	workflow   *domain.Workflow
	raw        string
	nodes      []string
	categories []string
	stats      *domain.CatalogStats
	err        error

	lastQuery domain.SearchQuery
}

func (m *mockCatalogService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Page: 1, PageSize: domain.DefaultPageSize}, nil
	}
	return m.page, nil
}

func (m *mockCatalogService) Get(_ context.Context, _ int64) (*domain.Workflow, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.workflow == nil {
		return nil, domain.ErrNotFound
	}
	return m.workflow, nil
}

func (m *mockCatalogService) GetRaw(_ context.Context, _ int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.raw == "" {
		return "", domain.ErrNotFound
	}
	return m.raw, nil
}

func (m *mockCatalogService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockCatalogService) Rename(_ context.Context, _ int64, _ string) error {
	return m.err
}

func (m *mockCatalogService) ListNodeTypes(_ context.Context) ([]string, error) {
	return m.nodes, m.err
}

func (m *mockCatalogService) ListCategories(_ context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockCatalogService) Stats(_ context.Context) (*domain.CatalogStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats == nil {
		return &domain.CatalogStats{}, nil
	}
	return m.stats, nil
}

func (m *mockCatalogService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return &domain.ConsistencyReport{}, m.err
}

func (m *mockCatalogService) RebuildIndex(_ context.Context) (int, error) {
	return 0, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	err    error

	lastRaw domain.RawWorkflow
}

func (m *mockIngestService) IngestOne(_ context.Context, raw domain.RawWorkflow) (*domain.IngestResult, error) {
	m.lastRaw = raw
	return m.result, m.err
}

func (m *mockIngestService) IngestBatch(
	_ context.Context,
	_ []domain.RawWorkflow,
	_ domain.BatchOptions,
) (*domain.BatchResult, error) {
	return &domain.BatchResult{}, m.err
}

func (m *mockIngestService) Import(_ context.Context, _ string, _ domain.BatchOptions) (*domain.BatchResult, error) {
	return &domain.BatchResult{}, m.err
}

// mockRepoService is a mock implementation of driving.RepoService.
type mockRepoService struct {
	repos []domain.RepoRegistration
	err   error
}

func (m *mockRepoService) Register(_ context.Context, url string) (*domain.RepoRegistration, error) {
	return &domain.RepoRegistration{URL: url, Enabled: true}, m.err
}

func (m *mockRepoService) List(_ context.Context) ([]domain.RepoRegistration, error) {
	return m.repos, m.err
}

func (m *mockRepoService) SetEnabled(_ context.Context, _ int64, _ bool) error {
	return m.err
}

func (m *mockRepoService) Delete(_ context.Context, _ int64) (int, error) {
	return 0, m.err
}

func (m *mockRepoService) Sync(_ context.Context, _ int64) (*domain.BatchResult, error) {
	return &domain.BatchResult{}, m.err
}

func (m *mockRepoService) SyncAll(_ context.Context) (map[string]*domain.BatchResult, error) {
	return map[string]*domain.BatchResult{}, m.err
}

func (m *mockRepoService) Status(_ context.Context, id int64) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{RepoID: id}, m.err
}

func (m *mockIngestService) Watch(_ context.Context, _ string, _ func(domain.IngestResult)) error {
	return m.err
}
