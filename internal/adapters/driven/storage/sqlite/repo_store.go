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

// repoStore implements driven.RepoStore.
type repoStore struct {
	store *Store
}

var _ driven.RepoStore = (*repoStore)(nil)

const repoColumns = "id, url, last_synced_at, workflow_count, enabled, created_at"

// Register creates a registration for url.
func (r *repoStore) Register(ctx context.Context, url string) (*domain.RepoRegistration, error) {
	err := r.store.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO repo_registrations (url, created_at) VALUES (?, ?)
			ON CONFLICT(url) DO NOTHING
		`, url, time.Now().UTC().UnixNano())
		if err != nil {
			return fmt.Errorf("registering repository: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("registering repository: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("repository %s: %w", url, domain.ErrAlreadyExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByURL(ctx, url)
}

// Get retrieves a registration by ID.
func (r *repoStore) Get(ctx context.Context, id int64) (*domain.RepoRegistration, error) {
	return scanRepo(r.store.db.QueryRowContext(ctx,
		"SELECT "+repoColumns+" FROM repo_registrations WHERE id = ?", id))
}

// GetByURL retrieves a registration by URL.
func (r *repoStore) GetByURL(ctx context.Context, url string) (*domain.RepoRegistration, error) {
	return scanRepo(r.store.db.QueryRowContext(ctx,
		"SELECT "+repoColumns+" FROM repo_registrations WHERE url = ?", url))
}

// List returns all registrations ordered by ID.
func (r *repoStore) List(ctx context.Context) ([]domain.RepoRegistration, error) {
	rows, err := r.store.db.QueryContext(ctx,
		"SELECT "+repoColumns+" FROM repo_registrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying repositories: %w", err)
	}
	defer rows.Close()

	repos := []domain.RepoRegistration{}
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repositories: %w", err)
	}
	return repos, nil
}

// RecordSync stamps the sync time and imported count, creating the
// registration on first sync.
func (r *repoStore) RecordSync(ctx context.Context, url string, count int) error {
	now := time.Now().UTC().UnixNano()
	return r.store.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO repo_registrations (url, last_synced_at, workflow_count, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(url) DO UPDATE SET
				last_synced_at = excluded.last_synced_at,
				workflow_count = excluded.workflow_count
		`, url, now, count, now)
		if err != nil {
			return fmt.Errorf("recording sync: %w", err)
		}
		return nil
	})
}

// SetEnabled toggles whether the registration takes part in SyncAll.
func (r *repoStore) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return r.store.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE repo_registrations SET enabled = ? WHERE id = ?", enabled, id)
		if err != nil {
			return fmt.Errorf("updating repository: %w", err)
		}
		return requireAffected(res)
	})
}

// Delete removes the registration and, in the same transaction, every
// workflow whose origin group is its URL together with their index rows.
// Membership rows go with the records through the foreign key cascade.
func (r *repoStore) Delete(ctx context.Context, id int64) (int, error) {
	var removed int
	err := r.store.writeTx(ctx, func(tx *sql.Tx) error {
		var url string
		err := tx.QueryRowContext(ctx, "SELECT url FROM repo_registrations WHERE id = ?", id).Scan(&url)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading repository: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM workflows_fts
			WHERE rowid IN (SELECT id FROM workflows WHERE origin_group = ?)
		`, url); err != nil {
			return fmt.Errorf("retracting index rows: %w", err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM workflows WHERE origin_group = ?", url)
		if err != nil {
			return fmt.Errorf("deleting workflows: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting workflows: %w", err)
		}
		removed = int(n)

		if _, err := tx.ExecContext(ctx, "DELETE FROM repo_registrations WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting repository: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func scanRepo(row rowScanner) (*domain.RepoRegistration, error) {
	var repo domain.RepoRegistration
	var lastSynced, created int64
	err := row.Scan(&repo.ID, &repo.URL, &lastSynced, &repo.WorkflowCount, &repo.Enabled, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}
	repo.LastSyncedAt = fromUnixNano(lastSynced)
	repo.CreatedAt = fromUnixNano(created)
	return &repo, nil
}
