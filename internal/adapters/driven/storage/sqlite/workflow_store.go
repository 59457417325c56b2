package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
)

// ==================== Workflow Store ====================

// workflowStore implements driven.WorkflowStore.
type workflowStore struct {
	store *Store
}

var _ driven.WorkflowStore = (*workflowStore)(nil)

// listColumns are the columns scanned by scanWorkflow, without raw content.
const listColumns = `
	id, name, description, nodes, categories, node_count, trigger_type,
	origin_url, origin_group, fingerprint, created_at, updated_at,
	usefulness, universality, complexity, scalability, summary, tags, use_cases,
	target_audience, integrations_summary, difficulty_level, enriched_at`

// InsertChunk stores a chunk of parsed workflows in one transaction.
func (w *workflowStore) InsertChunk(
	ctx context.Context, chunk []domain.ParsedWorkflow,
) ([]domain.InsertOutcome, error) {
	outcomes := make([]domain.InsertOutcome, len(chunk))
	if len(chunk) == 0 {
		return outcomes, nil
	}

	err := w.store.writeTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO workflows (name, description, nodes, categories, node_count, trigger_type,
				origin_url, origin_group, raw_content, fingerprint, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(fingerprint) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC().UnixNano()
		for i := range chunk {
			p := &chunk[i]
			nodesJSON, err := marshalList(p.Nodes)
			if err != nil {
				return err
			}
			categoriesJSON, err := marshalList(p.Categories)
			if err != nil {
				return err
			}

			res, err := stmt.ExecContext(ctx, p.Name, p.Description, nodesJSON, categoriesJSON,
				p.NodeCount, p.TriggerType, p.OriginURL, p.OriginGroup, p.RawContent,
				p.Fingerprint, now, now)
			if err != nil {
				return fmt.Errorf("inserting workflow %q: %w", p.Name, err)
			}

			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("inserting workflow %q: %w", p.Name, err)
			}
			if affected == 0 {
				outcomes[i] = domain.InsertOutcome{Duplicate: true}
				continue
			}

			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading workflow id: %w", err)
			}
			if err := syncMemberships(ctx, tx, id, p.Nodes, p.Categories); err != nil {
				return err
			}
			if err := indexWorkflow(ctx, tx, id); err != nil {
				return err
			}
			outcomes[i] = domain.InsertOutcome{ID: id}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Get retrieves a workflow by ID, including its raw content.
func (w *workflowStore) Get(ctx context.Context, id int64) (*domain.Workflow, error) {
	row := w.store.db.QueryRowContext(ctx,
		"SELECT"+listColumns+", raw_content FROM workflows WHERE id = ?", id)

	wf, err := scanWorkflow(row, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return wf, nil
}

// Delete removes a workflow, its membership rows and its index row.
func (w *workflowStore) Delete(ctx context.Context, id int64) error {
	return w.store.writeTx(ctx, func(tx *sql.Tx) error {
		if err := retractWorkflow(ctx, tx, id); err != nil {
			return err
		}
		if err := syncMemberships(ctx, tx, id, nil, nil); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM workflows WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting workflow: %w", err)
		}
		return requireAffected(res)
	})
}

// Rename changes a workflow's display name and reindexes it.
func (w *workflowStore) Rename(ctx context.Context, id int64, name string) error {
	return w.store.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE workflows SET name = ?, updated_at = ? WHERE id = ?",
			name, time.Now().UTC().UnixNano(), id)
		if err != nil {
			return fmt.Errorf("renaming workflow: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return indexWorkflow(ctx, tx, id)
	})
}

// ApplyEnrichment overwrites the enrichment block and reindexes the record.
func (w *workflowStore) ApplyEnrichment(ctx context.Context, id int64, e domain.Enrichment) error {
	tags, err := marshalList(e.Tags)
	if err != nil {
		return err
	}
	useCases, err := marshalList(e.UseCases)
	if err != nil {
		return err
	}
	analyzedAt := e.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}
	now := time.Now().UTC().UnixNano()

	return w.store.writeTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE workflows SET
				usefulness = ?, universality = ?, complexity = ?, scalability = ?,
				summary = ?, tags = ?, use_cases = ?, target_audience = ?,
				integrations_summary = ?, difficulty_level = ?, enriched_at = ?, updated_at = ?
			WHERE id = ?
		`, e.Usefulness, e.Universality, e.Complexity, e.Scalability,
			e.Summary, tags, useCases, e.TargetAudience,
			e.IntegrationsSummary, e.DifficultyLevel, analyzedAt.UTC().UnixNano(), now, id)
		if err != nil {
			return fmt.Errorf("applying enrichment: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		if e.SuggestedName != "" {
			var current string
			if err := tx.QueryRowContext(ctx, "SELECT name FROM workflows WHERE id = ?", id).Scan(&current); err != nil {
				return fmt.Errorf("reading workflow name: %w", err)
			}
			if domain.IsGenericName(current) && current != e.SuggestedName {
				if _, err := tx.ExecContext(ctx,
					"UPDATE workflows SET name = ? WHERE id = ?", e.SuggestedName, id); err != nil {
					return fmt.Errorf("renaming workflow: %w", err)
				}
			}
		}

		return indexWorkflow(ctx, tx, id)
	})
}

// ListUnenriched returns up to limit workflows never enriched, oldest first.
func (w *workflowStore) ListUnenriched(ctx context.Context, limit int) ([]domain.Workflow, error) {
	rows, err := w.store.db.QueryContext(ctx,
		"SELECT"+listColumns+", raw_content FROM workflows WHERE enriched_at = 0 ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying unenriched workflows: %w", err)
	}
	defer rows.Close()

	return scanWorkflows(rows, true)
}

// Stats summarises the catalogue.
func (w *workflowStore) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	var stats domain.CatalogStats
	err := w.store.readTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM workflows),
				(SELECT COUNT(*) FROM repo_registrations),
				(SELECT COUNT(DISTINCT node_type) FROM workflow_nodes),
				(SELECT COUNT(*) FROM workflows WHERE enriched_at != 0),
				(SELECT COALESCE(AVG(usefulness), 0) FROM workflows WHERE enriched_at != 0)
		`).Scan(&stats.TotalWorkflows, &stats.TotalRepos, &stats.UniqueNodes,
			&stats.EnrichedCount, &stats.AvgUsefulness)
	})
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return &stats, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkflow scans listColumns, followed by raw_content when withRaw is set.
func scanWorkflow(row rowScanner, withRaw bool) (*domain.Workflow, error) {
	var wf domain.Workflow
	var nodesJSON, categoriesJSON, tagsJSON, useCasesJSON string
	var createdAt, updatedAt, enrichedAt int64

	dest := []any{
		&wf.ID, &wf.Name, &wf.Description, &nodesJSON, &categoriesJSON, &wf.NodeCount,
		&wf.TriggerType, &wf.OriginURL, &wf.OriginGroup, &wf.Fingerprint, &createdAt, &updatedAt,
		&wf.Enrichment.Usefulness, &wf.Enrichment.Universality, &wf.Enrichment.Complexity,
		&wf.Enrichment.Scalability, &wf.Enrichment.Summary, &tagsJSON, &useCasesJSON,
		&wf.Enrichment.TargetAudience, &wf.Enrichment.IntegrationsSummary,
		&wf.Enrichment.DifficultyLevel, &enrichedAt,
	}
	if withRaw {
		dest = append(dest, &wf.RawContent)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning workflow: %w", err)
	}

	for _, list := range []struct {
		raw string
		dst *[]string
	}{
		{nodesJSON, &wf.Nodes},
		{categoriesJSON, &wf.Categories},
		{tagsJSON, &wf.Enrichment.Tags},
		{useCasesJSON, &wf.Enrichment.UseCases},
	} {
		if err := json.Unmarshal([]byte(list.raw), list.dst); err != nil {
			return nil, fmt.Errorf("unmarshaling workflow %d: %w", wf.ID, err)
		}
	}

	wf.CreatedAt = fromUnixNano(createdAt)
	wf.UpdatedAt = fromUnixNano(updatedAt)
	wf.Enrichment.AnalyzedAt = fromUnixNano(enrichedAt)
	return &wf, nil
}

func scanWorkflows(rows *sql.Rows, withRaw bool) ([]domain.Workflow, error) {
	workflows := []domain.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows, withRaw)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workflows: %w", err)
	}
	return workflows, nil
}

// marshalList encodes a string set as a JSON array, never null.
func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshalling list: %w", err)
	}
	return string(data), nil
}

// fromUnixNano converts a stored timestamp; zero stays the zero time.
func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// requireAffected maps an update or delete that touched no row to domain.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
