package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// ftsProjection selects the searchable text of workflows in workflows_fts
// column order. JSON list columns are indexed as-is: the unicode61
// tokenizer treats brackets, quotes and commas as separators.
const ftsProjection = `
	SELECT id, name, description, nodes, categories, summary, tags,
		use_cases, target_audience, integrations_summary
	FROM workflows`

const ftsInsert = `
	INSERT INTO workflows_fts (rowid, name, description, nodes, categories, summary,
		tags, use_cases, target_audience, integrations_summary)`

// indexWorkflow retracts and reinserts the search-index row of workflow id
// from its current record. The row is never patched in place. Callers
// check that the record exists.
func indexWorkflow(ctx context.Context, tx *sql.Tx, id int64) error {
	if err := retractWorkflow(ctx, tx, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, ftsInsert+ftsProjection+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("indexing workflow %d: %w", id, err)
	}
	return nil
}

// retractWorkflow removes the search-index row of workflow id, if any.
func retractWorkflow(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM workflows_fts WHERE rowid = ?", id); err != nil {
		return fmt.Errorf("retracting index row %d: %w", id, err)
	}
	return nil
}

// RebuildSearchIndex retracts every index row and reinserts one per record.
func (w *workflowStore) RebuildSearchIndex(ctx context.Context) (int, error) {
	var indexed int
	err := w.store.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM workflows_fts"); err != nil {
			return fmt.Errorf("clearing search index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ftsInsert+ftsProjection); err != nil {
			return fmt.Errorf("rebuilding search index: %w", err)
		}
		return tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows_fts").Scan(&indexed)
	})
	if err != nil {
		return 0, err
	}
	return indexed, nil
}
