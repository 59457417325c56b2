package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// historyRetention is the number of results kept per task.
const historyRetention = 100

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs the background tasks of `flowhub serve`: periodic
// repository sync and the catalogue consistency audit.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	repos   driving.RepoService
	catalog driving.CatalogService
	tick    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	busy    map[string]bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
// repos and catalog may be nil, which turns their tasks into no-ops.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	repos driving.RepoService,
	catalog driving.CatalogService,
) *Scheduler {
	return &Scheduler{
		config:  config,
		store:   store,
		repos:   repos,
		catalog: catalog,
		tick:    time.Minute,
		busy:    make(map[string]bool),
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or ctx ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || !s.config.Enabled {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, t := range []struct{ id, name string }{
		{domain.TaskIDRepoSync, "Repository Sync"},
		{domain.TaskIDIndexAudit, "Index Audit"},
	} {
		cfg := s.config.GetTaskConfig(t.id)
		if cfg.Interval <= 0 {
			continue
		}
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task in the background. A task that is still
// running from a previous tick is skipped.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.busy[task.ID] {
		s.mu.Unlock()
		return
	}
	s.busy[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.busy, task.ID)
			s.mu.Unlock()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDRepoSync:
			result.ItemsProcessed, err = s.runRepoSync(ctx)
		case domain.TaskIDIndexAudit:
			result.ItemsProcessed, err = s.runIndexAudit(ctx)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Warn("scheduler: %s failed: %v", task.ID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		// Persist with a fresh context so shutdown does not lose the outcome.
		saveCtx := context.WithoutCancel(ctx)
		if saveErr := s.store.SaveTask(saveCtx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(saveCtx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(saveCtx, historyRetention); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runRepoSync syncs every enabled repository and returns the number of new workflows.
func (s *Scheduler) runRepoSync(ctx context.Context) (int, error) {
	if s.repos == nil {
		return 0, nil
	}

	results, err := s.repos.SyncAll(ctx)
	imported := 0
	for _, r := range results {
		imported += r.Imported
	}
	return imported, err
}

// runIndexAudit verifies the catalogue and rebuilds the search index when
// index rows have drifted. Membership drift is reported, not repaired.
func (s *Scheduler) runIndexAudit(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, nil
	}

	report, err := s.catalog.Verify(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	if len(report.MissingIndex) > 0 || len(report.OrphanIndex) > 0 {
		if _, err := s.catalog.RebuildIndex(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(report.StaleMemberships) > 0 {
		errs = append(errs, fmt.Errorf("%d workflows have stale memberships", len(report.StaleMemberships)))
	}
	return report.Workflows, errors.Join(errs...)
}
