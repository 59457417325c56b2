package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

type mockCatalogService struct {
	workflows  map[int64]*domain.Workflow
	nodes      []string
	categories []string
	stats      domain.CatalogStats
	report     domain.ConsistencyReport
	err        error

	lastQuery domain.SearchQuery
	deleted   []int64
	renamed   map[int64]string
	reindexed int
}

func (m *mockCatalogService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	page := &domain.SearchPage{Page: 1, PageSize: domain.DefaultPageSize}
	for _, wf := range m.workflows {
		if q.Text == "" || strings.Contains(strings.ToLower(wf.Name), strings.ToLower(q.Text)) {
			page.Workflows = append(page.Workflows, *wf)
		}
	}
	page.Total = len(page.Workflows)
	page.TotalPages = domain.TotalPages(page.Total, page.PageSize)
	return page, nil
}

func (m *mockCatalogService) Get(_ context.Context, id int64) (*domain.Workflow, error) {
	if m.err != nil {
		return nil, m.err
	}
	wf, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return wf, nil
}

func (m *mockCatalogService) GetRaw(ctx context.Context, id int64) (string, error) {
	wf, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return wf.RawContent, nil
}

func (m *mockCatalogService) Delete(ctx context.Context, id int64) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCatalogService) Rename(ctx context.Context, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
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
	return &m.stats, nil
}

func (m *mockCatalogService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	report := m.report
	return &report, nil
}

func (m *mockCatalogService) RebuildIndex(_ context.Context) (int, error) {
	m.reindexed++
	return len(m.workflows), m.err
}

type mockIngestService struct {
	result  *domain.IngestResult
	batch   *domain.BatchResult
	watched []domain.IngestResult
	err     error

	lastRaw    domain.RawWorkflow
	lastOrigin string
	lastOpts   domain.BatchOptions
}

func (m *mockIngestService) IngestOne(_ context.Context, raw domain.RawWorkflow) (*domain.IngestResult, error) {
	m.lastRaw = raw
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.IngestResult{Status: domain.IngestStatusOK, ID: 1, Name: "Untitled"}, nil
}

func (m *mockIngestService) IngestBatch(
	_ context.Context,
	raws []domain.RawWorkflow,
	_ domain.BatchOptions,
) (*domain.BatchResult, error) {
	return &domain.BatchResult{Imported: len(raws), Total: len(raws)}, m.err
}

func (m *mockIngestService) Import(
	_ context.Context,
	origin string,
	opts domain.BatchOptions,
) (*domain.BatchResult, error) {
	m.lastOrigin = origin
	m.lastOpts = opts
	result := m.batch
	if result == nil {
		result = &domain.BatchResult{}
	}
	if opts.Progress != nil {
		opts.Progress(*result)
	}
	return result, m.err
}

func (m *mockIngestService) Watch(_ context.Context, origin string, report func(domain.IngestResult)) error {
	m.lastOrigin = origin
	for _, r := range m.watched {
		report(r)
	}
	return m.err
}

type mockRepoService struct {
	repos   []domain.RepoRegistration
	sync    *domain.BatchResult
	syncAll map[string]*domain.BatchResult
	removed int
	err     error
	syncErr error

	enabled   map[int64]bool
	synced    []int64
	syncedAll bool
}

func (m *mockRepoService) Register(_ context.Context, url string) (*domain.RepoRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	repo := domain.RepoRegistration{ID: int64(len(m.repos) + 1), URL: url, Enabled: true}
	m.repos = append(m.repos, repo)
	return &repo, nil
}

func (m *mockRepoService) List(_ context.Context) ([]domain.RepoRegistration, error) {
	return m.repos, m.err
}

func (m *mockRepoService) SetEnabled(_ context.Context, id int64, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	if m.enabled == nil {
		m.enabled = make(map[int64]bool)
	}
	m.enabled[id] = enabled
	return nil
}

func (m *mockRepoService) Delete(_ context.Context, _ int64) (int, error) {
	return m.removed, m.err
}

func (m *mockRepoService) Sync(_ context.Context, id int64) (*domain.BatchResult, error) {
	m.synced = append(m.synced, id)
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	if m.sync != nil {
		return m.sync, nil
	}
	return &domain.BatchResult{}, nil
}

func (m *mockRepoService) SyncAll(_ context.Context) (map[string]*domain.BatchResult, error) {
	m.syncedAll = true
	return m.syncAll, m.syncErr
}

func (m *mockRepoService) Status(_ context.Context, id int64) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{RepoID: id}, nil
}

type mockEnrichmentService struct {
	pending []domain.Workflow
	err     error

	appliedID int64
	applied   *domain.Enrichment
	lastLimit int
}

func (m *mockEnrichmentService) ApplyEnrichment(_ context.Context, id int64, e domain.Enrichment) error {
	if m.err != nil {
		return m.err
	}
	m.appliedID = id
	m.applied = &e
	return nil
}

func (m *mockEnrichmentService) ListUnenriched(_ context.Context, limit int) ([]domain.Workflow, error) {
	m.lastLimit = limit
	return m.pending, m.err
}

var errBoom = errors.New("boom")

type testServices struct {
	catalog    *mockCatalogService
	ingest     *mockIngestService
	repos      *mockRepoService
	enrichment *mockEnrichmentService
}

// setupTestServices injects mock services and resets command flags.
// The returned function restores the unconfigured state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		catalog:    &mockCatalogService{workflows: map[int64]*domain.Workflow{}},
		ingest:     &mockIngestService{},
		repos:      &mockRepoService{},
		enrichment: &mockEnrichmentService{},
	}
	resetFlags()
	SetServices(&Services{
		Catalog:    ts.catalog,
		Ingest:     ts.ingest,
		Repos:      ts.repos,
		Enrichment: ts.enrichment,
	})

	return ts, func() {
		useServices(&Services{})
		services = nil
		injected = false
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}
}

func resetFlags() {
	searchCategory, searchNode, searchSort = "", "", string(domain.SortRecent)
	searchMinScore, searchPage, searchPageSize = 0, 1, 0
	searchJSON = false
	showFormat, showRaw = "text", false
	listJSON, verifyFix = false, false
	importChunkSize, importWatch, importJSON, importOrigin = 0, false, false, ""
	reposJSON, reposSyncAll, reposAddSync = false, false, false
	enrichLimit, enrichJSON = domain.DefaultPageSize, false
	serveAddr, serveNoSync, serveNoMCP = "", false, false
}
