package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const taskColumns = "id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled"

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM scheduled_tasks WHERE id = ?", taskID)

	task, err := scanScheduledTask(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns all scheduled tasks.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM scheduled_tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanScheduledTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask persists a task's state.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	return s.store.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scheduled_tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				interval_seconds = excluded.interval_seconds,
				last_run = excluded.last_run,
				next_run = excluded.next_run,
				last_error = excluded.last_error,
				last_success = excluded.last_success,
				enabled = excluded.enabled
		`, task.ID, task.Name, int64(task.Interval.Seconds()),
			toUnixNano(task.LastRun), toUnixNano(task.NextRun),
			task.LastError, toUnixNano(task.LastSuccess), task.Enabled)
		if err != nil {
			return fmt.Errorf("saving scheduled task: %w", err)
		}
		return nil
	})
}

// RecordResult logs a task execution result.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	return s.store.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_results (task_id, started_at, ended_at, success, error, items_processed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, result.TaskID, toUnixNano(result.StartedAt), toUnixNano(result.EndedAt),
			result.Success, result.Error, result.ItemsProcessed)
		if err != nil {
			return fmt.Errorf("recording task result: %w", err)
		}
		return nil
	})
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT task_id, started_at, ended_at, success, error, items_processed
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}
	defer rows.Close()

	var results []domain.TaskResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var result domain.TaskResult
		var startedAt, endedAt int64
		if err := rows.Scan(&result.TaskID, &startedAt, &endedAt,
			&result.Success, &result.Error, &result.ItemsProcessed); err != nil {
			return nil, fmt.Errorf("scanning task result: %w", err)
		}
		result.StartedAt = fromUnixNano(startedAt)
		result.EndedAt = fromUnixNano(endedAt)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task history: %w", err)
	}
	return results, nil
}

// PruneHistory removes old task results beyond the retention limit.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	return s.store.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM task_results
			WHERE id NOT IN (
				SELECT id FROM (
					SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
					FROM task_results
				) WHERE rn <= ?
			)
		`, keep)
		if err != nil {
			return fmt.Errorf("pruning task history: %w", err)
		}
		return nil
	})
}

func scanScheduledTask(row rowScanner) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalSeconds, lastRun, nextRun, lastSuccess int64

	if err := row.Scan(&task.ID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &task.LastError, &lastSuccess, &task.Enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	task.LastRun = fromUnixNano(lastRun)
	task.NextRun = fromUnixNano(nextRun)
	task.LastSuccess = fromUnixNano(lastSuccess)
	return &task, nil
}

// toUnixNano stores the zero time as 0.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}
