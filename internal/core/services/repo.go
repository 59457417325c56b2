package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// Ensure RepoService implements the interface.
var _ driving.RepoService = (*RepoService)(nil)

// RepoService manages repository registrations and their synchronisation.
type RepoService struct {
	repos  driven.RepoStore
	ingest driving.IngestService
	groups driven.GroupResolver
	cache  driven.FacetCache

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[int64]*driving.SyncStatus
}

// NewRepoService creates a new repository service. cache is optional.
func NewRepoService(
	repos driven.RepoStore, ingest driving.IngestService, groups driven.GroupResolver, cache driven.FacetCache,
) *RepoService {
	return &RepoService{
		repos:       repos,
		ingest:      ingest,
		groups:      groups,
		cache:       cache,
		activeSyncs: make(map[int64]*driving.SyncStatus),
	}
}

// Register records a repository without importing it. The URL is stored in
// its canonical group form so that imported workflows belong to it.
func (s *RepoService) Register(ctx context.Context, url string) (*domain.RepoRegistration, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: repository url is required", domain.ErrInvalidInput)
	}
	if s.groups == nil {
		return nil, fmt.Errorf("register %s: %w", url, domain.ErrUnsupportedSource)
	}
	group, err := s.groups.Group(url)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.repos.Register(ctx, group)
}

// List returns all registrations.
func (s *RepoService) List(ctx context.Context) ([]domain.RepoRegistration, error) {
	return s.repos.List(ctx)
}

// SetEnabled toggles whether a registration takes part in SyncAll.
func (s *RepoService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return s.repos.SetEnabled(ctx, id, enabled)
}

// Delete removes a registration and every workflow imported from it.
func (s *RepoService) Delete(ctx context.Context, id int64) (int, error) {
	if s.running(id) {
		return 0, fmt.Errorf("delete repository %d: %w", id, domain.ErrSyncInProgress)
	}
	removed, err := s.repos.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	logger.Info("Removed repository %d and %d workflows", id, removed)
	return removed, nil
}

// Sync re-imports one registered repository. Duplicates of already stored
// documents are skipped, so re-syncing only adds new workflows.
func (s *RepoService) Sync(ctx context.Context, id int64) (*domain.BatchResult, error) {
	// 1. Get registration
	repo, err := s.repos.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}
	if !repo.Enabled {
		return nil, fmt.Errorf("sync %s: %w", repo.URL, domain.ErrRepoDisabled)
	}

	// 2. Claim the sync slot
	status := &driving.SyncStatus{RepoID: id, Running: true}
	if !s.claim(status) {
		return nil, fmt.Errorf("sync %s: %w", repo.URL, domain.ErrSyncInProgress)
	}
	defer s.release(id)

	logger.Info("Starting sync for repository %s", repo.URL)

	// 3. Import, tracking progress for Status
	result, err := s.ingest.Import(ctx, repo.URL, domain.BatchOptions{
		Progress: func(r domain.BatchResult) {
			s.mu.Lock()
			status.Imported = r.Imported
			status.Duplicates = r.Duplicates
			status.Errors = r.Errors
			s.mu.Unlock()
		},
	})
	if err != nil {
		return result, fmt.Errorf("sync %s: %w", repo.URL, err)
	}

	logger.Info("Sync complete: %d new, %d duplicates, %d errors",
		result.Imported, result.Duplicates, result.Errors)
	return result, nil
}

// SyncAll re-imports every enabled repository. Failures are joined; the
// remaining repositories are still synced.
func (s *RepoService) SyncAll(ctx context.Context) (map[string]*domain.BatchResult, error) {
	repos, err := s.repos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	results := make(map[string]*domain.BatchResult)
	var errs []error
	for _, repo := range repos {
		if !repo.Enabled {
			logger.Debug("Skipping disabled repository %s", repo.URL)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := s.Sync(ctx, repo.ID)
		if result != nil {
			results[repo.URL] = result
		}
		if err != nil {
			logger.Warn("Sync failed for %s: %v", repo.URL, err)
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}

// Status returns the progress of a running sync, or an idle status.
func (s *RepoService) Status(_ context.Context, id int64) (*driving.SyncStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status, ok := s.activeSyncs[id]; ok {
		copied := *status
		return &copied, nil
	}
	return &driving.SyncStatus{RepoID: id}, nil
}

func (s *RepoService) claim(status *driving.SyncStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activeSyncs[status.RepoID]; ok {
		return false
	}
	s.activeSyncs[status.RepoID] = status
	return true
}

func (s *RepoService) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeSyncs, id)
}

func (s *RepoService) running(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.activeSyncs[id]
	return ok
}
