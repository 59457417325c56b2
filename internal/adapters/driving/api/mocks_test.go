package api

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

type mockCatalog struct {
	page       *domain.SearchPage
	workflows  map[int64]*domain.Workflow
	nodes      []string
	categories []string
	report     *domain.ConsistencyReport
	err        error

	lastQuery domain.SearchQuery
	renamed   map[int64]string
	deleted   []int64
}

func (m *mockCatalog) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Page: 1, PageSize: domain.DefaultPageSize}, nil
	}
	return m.page, nil
}

func (m *mockCatalog) Get(_ context.Context, id int64) (*domain.Workflow, error) {
	if m.err != nil {
		return nil, m.err
	}
	wf, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return wf, nil
}

func (m *mockCatalog) GetRaw(ctx context.Context, id int64) (string, error) {
	wf, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return wf.RawContent, nil
}

func (m *mockCatalog) Delete(ctx context.Context, id int64) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCatalog) Rename(ctx context.Context, id int64, name string) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if m.renamed == nil {
		m.renamed = make(map[int64]string)
	}
	m.renamed[id] = name
	return nil
}

func (m *mockCatalog) ListNodeTypes(_ context.Context) ([]string, error) {
	return m.nodes, m.err
}

func (m *mockCatalog) ListCategories(_ context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockCatalog) Stats(_ context.Context) (*domain.CatalogStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CatalogStats{TotalWorkflows: len(m.workflows)}, nil
}

func (m *mockCatalog) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	if m.report == nil {
		return &domain.ConsistencyReport{Workflows: len(m.workflows)}, m.err
	}
	return m.report, m.err
}

func (m *mockCatalog) RebuildIndex(_ context.Context) (int, error) {
	return len(m.workflows), m.err
}

type mockIngest struct {
	result *domain.IngestResult
	batch  *domain.BatchResult
	err    error

	lastRaw    domain.RawWorkflow
	lastOrigin string
}

func (m *mockIngest) IngestOne(_ context.Context, raw domain.RawWorkflow) (*domain.IngestResult, error) {
	m.lastRaw = raw
	return m.result, m.err
}

func (m *mockIngest) IngestBatch(_ context.Context, _ []domain.RawWorkflow, _ domain.BatchOptions) (*domain.BatchResult, error) {
	return m.batch, m.err
}

func (m *mockIngest) Import(_ context.Context, origin string, _ domain.BatchOptions) (*domain.BatchResult, error) {
	m.lastOrigin = origin
	return m.batch, m.err
}

type mockRepos struct {
	repos   []domain.RepoRegistration
	results map[string]*domain.BatchResult
	err     error

	enabled map[int64]bool
}

func (m *mockRepos) Register(_ context.Context, url string) (*domain.RepoRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RepoRegistration{ID: 1, URL: url, Enabled: true}, nil
}

func (m *mockRepos) List(_ context.Context) ([]domain.RepoRegistration, error) {
	return m.repos, m.err
}

func (m *mockRepos) SetEnabled(_ context.Context, id int64, enabled bool) error {
	if m.enabled == nil {
		m.enabled = make(map[int64]bool)
	}
	m.enabled[id] = enabled
	return m.err
}

func (m *mockRepos) Delete(_ context.Context, _ int64) (int, error) {
	return 4, m.err
}

func (m *mockRepos) Sync(_ context.Context, _ int64) (*domain.BatchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.BatchResult{Imported: 2, Total: 2}, nil
}

func (m *mockRepos) SyncAll(_ context.Context) (map[string]*domain.BatchResult, error) {
	return m.results, m.err
}

func (m *mockRepos) Status(_ context.Context, id int64) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{RepoID: id, Running: true, Imported: 3}, m.err
}

type mockEnrichment struct {
	applied map[int64]domain.Enrichment
	pending []domain.Workflow
	err     error

	lastLimit int
}

func (m *mockEnrichment) ApplyEnrichment(_ context.Context, id int64, e domain.Enrichment) error {
	if m.err != nil {
		return m.err
	}
	if m.applied == nil {
		m.applied = make(map[int64]domain.Enrichment)
	}
	m.applied[id] = e
	return nil
}

func (m *mockEnrichment) ListUnenriched(_ context.Context, limit int) ([]domain.Workflow, error) {
	m.lastLimit = limit
	return m.pending, m.err
}

func (m *mockIngest) Watch(_ context.Context, origin string, _ func(domain.IngestResult)) error {
	m.lastOrigin = origin
	return m.err
}
