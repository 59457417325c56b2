package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

// --- Workflow store ---

// mockWorkflowStore keeps workflows in memory and deduplicates by fingerprint.
type mockWorkflowStore struct {
	mu           sync.Mutex
	nextID       int64
	workflows    map[int64]*domain.Workflow
	fingerprints map[string]int64
	chunkSizes   []int

	// failOnChunk makes the n-th InsertChunk call (1-based) fail.
	failOnChunk int
	insertCalls int

	searchQuery domain.SearchQuery
	listCalls   int
	verifyCalls int
	rebuilds    int
	report      *domain.ConsistencyReport
}

func newMockWorkflowStore() *mockWorkflowStore {
	return &mockWorkflowStore{
		workflows:    make(map[int64]*domain.Workflow),
		fingerprints: make(map[string]int64),
	}
}

var errStorage = errors.New("disk full")

func (m *mockWorkflowStore) InsertChunk(_ context.Context, chunk []domain.ParsedWorkflow) ([]domain.InsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	m.chunkSizes = append(m.chunkSizes, len(chunk))
	if m.failOnChunk == m.insertCalls {
		return nil, errStorage
	}

	outcomes := make([]domain.InsertOutcome, len(chunk))
	for i, p := range chunk {
		if _, ok := m.fingerprints[p.Fingerprint]; ok {
			outcomes[i] = domain.InsertOutcome{Duplicate: true}
			continue
		}
		m.nextID++
		m.fingerprints[p.Fingerprint] = m.nextID
		m.workflows[m.nextID] = &domain.Workflow{
			ID:          m.nextID,
			Name:        p.Name,
			Nodes:       p.Nodes,
			Categories:  p.Categories,
			OriginGroup: p.OriginGroup,
			Fingerprint: p.Fingerprint,
			RawContent:  p.RawContent,
		}
		outcomes[i] = domain.InsertOutcome{ID: m.nextID}
	}
	return outcomes, nil
}

func (m *mockWorkflowStore) Get(_ context.Context, id int64) (*domain.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *wf
	return &copied, nil
}

func (m *mockWorkflowStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.fingerprints, wf.Fingerprint)
	delete(m.workflows, id)
	return nil
}

func (m *mockWorkflowStore) Rename(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[id]
	if !ok {
		return domain.ErrNotFound
	}
	wf.Name = name
	return nil
}

func (m *mockWorkflowStore) ApplyEnrichment(_ context.Context, id int64, e domain.Enrichment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.workflows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.SuggestedName != "" && domain.IsGenericName(wf.Name) {
		wf.Name = e.SuggestedName
	}
	e.SuggestedName = ""
	wf.Enrichment = e
	return nil
}

func (m *mockWorkflowStore) ListUnenriched(_ context.Context, limit int) ([]domain.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Workflow
	for _, id := range m.sortedIDs() {
		if wf := m.workflows[id]; !wf.Enriched() && len(out) < limit {
			out = append(out, *wf)
		}
	}
	return out, nil
}

func (m *mockWorkflowStore) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchQuery = q
	page := &domain.SearchPage{Page: q.Page, PageSize: q.PageSize, Workflows: []domain.Workflow{}}
	for _, id := range m.sortedIDs() {
		if q.Text == "" || strings.Contains(strings.ToLower(m.workflows[id].Name), strings.ToLower(q.Text)) {
			page.Workflows = append(page.Workflows, *m.workflows[id])
		}
	}
	page.Total = len(page.Workflows)
	page.TotalPages = domain.TotalPages(page.Total, q.PageSize)
	return page, nil
}

func (m *mockWorkflowStore) ListNodeTypes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var nodes []string
	for _, wf := range m.workflows {
		nodes = append(nodes, wf.Nodes...)
	}
	slices.Sort(nodes)
	return slices.Compact(nodes), nil
}

func (m *mockWorkflowStore) ListCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var cats []string
	for _, wf := range m.workflows {
		cats = append(cats, wf.Categories...)
	}
	slices.Sort(cats)
	return slices.Compact(cats), nil
}

func (m *mockWorkflowStore) Stats(_ context.Context) (*domain.CatalogStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.CatalogStats{TotalWorkflows: len(m.workflows)}, nil
}

func (m *mockWorkflowStore) BackfillMemberships(_ context.Context) (int, error) {
	return 0, nil
}

func (m *mockWorkflowStore) RebuildSearchIndex(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	m.report = nil
	return len(m.workflows), nil
}

func (m *mockWorkflowStore) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls++
	if m.report != nil {
		return m.report, nil
	}
	return &domain.ConsistencyReport{Workflows: len(m.workflows)}, nil
}

func (m *mockWorkflowStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.workflows))
	for id := range m.workflows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// --- Normaliser ---

// mockNormaliser accepts any document except those containing "invalid".
// The document text doubles as the workflow name.
type mockNormaliser struct{}

func (mockNormaliser) Normalise(_ context.Context, raw domain.RawWorkflow) (*domain.ParsedWorkflow, error) {
	content := string(raw.Content)
	if strings.Contains(content, "invalid") {
		return nil, domain.ErrInvalidWorkflow
	}
	return &domain.ParsedWorkflow{
		Name:        content,
		Nodes:       []string{"slack"},
		Categories:  []string{"Communication"},
		NodeCount:   1,
		TriggerType: domain.TriggerComplex,
		OriginURL:   raw.OriginURL,
		OriginGroup: raw.OriginGroup,
		RawContent:  content,
		Fingerprint: domain.Fingerprint(raw.Content),
	}, nil
}

func rawDocs(contents ...string) []domain.RawWorkflow {
	raws := make([]domain.RawWorkflow, 0, len(contents))
	for _, c := range contents {
		raws = append(raws, domain.RawWorkflow{Content: []byte(c), OriginURL: "file://" + c})
	}
	return raws
}

// --- Connectors ---

type mockConnector struct {
	group       string
	docs        []domain.RawWorkflow
	fetchErrs   []error
	validateErr error
	closed      bool
}

func (c *mockConnector) Type() string        { return "mock" }
func (c *mockConnector) OriginGroup() string { return c.group }

func (c *mockConnector) Validate(_ context.Context) error { return c.validateErr }

func (c *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawWorkflow, <-chan error) {
	docsCh := make(chan domain.RawWorkflow)
	errsCh := make(chan error)
	go func() {
		defer close(docsCh)
		defer close(errsCh)
		for _, doc := range c.docs {
			select {
			case docsCh <- doc:
			case <-ctx.Done():
				return
			}
		}
		for _, err := range c.fetchErrs {
			select {
			case errsCh <- err:
			case <-ctx.Done():
				return
			}
		}
	}()
	return docsCh, errsCh
}

func (c *mockConnector) Close() error {
	c.closed = true
	return nil
}

// mockWatchConnector pushes its documents once Watch is called and closes
// the stream when the watch context ends.
type mockWatchConnector struct {
	*mockConnector
	pushed []domain.RawWorkflow
}

func (c *mockWatchConnector) Watch(ctx context.Context) (<-chan domain.RawWorkflow, error) {
	out := make(chan domain.RawWorkflow)
	go func() {
		defer close(out)
		for _, doc := range c.pushed {
			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()
	return out, nil
}

type mockConnectorFactory struct {
	connectors map[string]*mockConnector
	watchers   map[string]*mockWatchConnector
}

func (f *mockConnectorFactory) Create(_ context.Context, origin string) (driven.Connector, error) {
	if w, ok := f.watchers[origin]; ok {
		return w, nil
	}
	c, ok := f.connectors[origin]
	if !ok {
		return nil, domain.ErrUnsupportedSource
	}
	return c, nil
}

// Group mirrors the GitHub grouping rules for https://github.com URLs.
func (f *mockConnectorFactory) Group(origin string) (string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(origin), "https://github.com/")
	if !ok {
		return "", domain.ErrUnsupportedSource
	}
	segs := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(segs) < 2:
		return "", domain.ErrInvalidInput
	case len(segs) > 2 && segs[2] == "blob":
		return "", domain.ErrUnsupportedSource
	}
	return "https://github.com/" + segs[0] + "/" + strings.TrimSuffix(segs[1], ".git"), nil
}

// --- Repo store ---

type mockRepoStore struct {
	mu     sync.Mutex
	nextID int64
	repos  map[int64]*domain.RepoRegistration
	owner  *mockWorkflowStore
}

func newMockRepoStore(owner *mockWorkflowStore) *mockRepoStore {
	return &mockRepoStore{repos: make(map[int64]*domain.RepoRegistration), owner: owner}
}

func (m *mockRepoStore) Register(_ context.Context, url string) (*domain.RepoRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.repos {
		if r.URL == url {
			return nil, domain.ErrAlreadyExists
		}
	}
	m.nextID++
	r := &domain.RepoRegistration{ID: m.nextID, URL: url, Enabled: true}
	m.repos[r.ID] = r
	copied := *r
	return &copied, nil
}

func (m *mockRepoStore) Get(_ context.Context, id int64) (*domain.RepoRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.repos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockRepoStore) GetByURL(_ context.Context, url string) (*domain.RepoRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.repos {
		if r.URL == url {
			copied := *r
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRepoStore) List(_ context.Context) ([]domain.RepoRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.RepoRegistration{}
	for id := int64(1); id <= m.nextID; id++ {
		if r, ok := m.repos[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepoStore) RecordSync(_ context.Context, url string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.repos {
		if r.URL == url {
			r.WorkflowCount = count
			return nil
		}
	}
	m.nextID++
	m.repos[m.nextID] = &domain.RepoRegistration{ID: m.nextID, URL: url, Enabled: true, WorkflowCount: count}
	return nil
}

func (m *mockRepoStore) SetEnabled(_ context.Context, id int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.repos[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Enabled = enabled
	return nil
}

func (m *mockRepoStore) Delete(ctx context.Context, id int64) (int, error) {
	m.mu.Lock()
	r, ok := m.repos[id]
	if !ok {
		m.mu.Unlock()
		return 0, domain.ErrNotFound
	}
	delete(m.repos, id)
	m.mu.Unlock()

	removed := 0
	if m.owner != nil {
		for _, wfID := range m.owner.sortedIDs() {
			wf, _ := m.owner.Get(ctx, wfID)
			if wf != nil && wf.OriginGroup == r.URL {
				_ = m.owner.Delete(ctx, wfID)
				removed++
			}
		}
	}
	return removed, nil
}

// --- Facet cache ---

type mockFacetCache struct {
	mu          sync.Mutex
	values      map[string][]string
	invalidated int
}

func newMockFacetCache() *mockFacetCache {
	return &mockFacetCache{values: make(map[string][]string)}
}

func (c *mockFacetCache) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *mockFacetCache) Set(key string, values []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = values
}

func (c *mockFacetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.values = make(map[string][]string)
}

// Ensure mocks implement interfaces
var (
	_ driven.WorkflowStore    = (*mockWorkflowStore)(nil)
	_ driven.Normaliser       = mockNormaliser{}
	_ driven.Connector        = (*mockConnector)(nil)
	_ driven.ConnectorFactory = (*mockConnectorFactory)(nil)
	_ driven.GroupResolver    = (*mockConnectorFactory)(nil)
	_ driven.Watcher          = (*mockWatchConnector)(nil)
	_ driven.RepoStore        = (*mockRepoStore)(nil)
	_ driven.FacetCache       = (*mockFacetCache)(nil)
	_ driving.IngestService   = (*IngestService)(nil)
)
