package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// facet describes one membership table.
type facet struct {
	table  string
	column string
}

var (
	nodeFacet     = facet{table: "workflow_nodes", column: "node_type"}
	categoryFacet = facet{table: "workflow_categories", column: "category"}
)

// syncMemberships makes the membership rows of workflow id exactly equal to
// nodes and categories. It must run in the transaction of the owning mutation.
func syncMemberships(ctx context.Context, tx *sql.Tx, id int64, nodes, categories []string) error {
	if err := syncFacet(ctx, tx, nodeFacet, id, nodes); err != nil {
		return err
	}
	return syncFacet(ctx, tx, categoryFacet, id, categories)
}

// syncFacet removes rows that no longer apply and adds missing ones.
func syncFacet(ctx context.Context, tx *sql.Tx, f facet, id int64, values []string) error {
	//nolint:gosec // table and column names are package constants
	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE workflow_id = ?", f.column, f.table), id)
	if err != nil {
		return fmt.Errorf("querying %s: %w", f.table, err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scanning %s: %w", f.table, err)
		}
		existing[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", f.table, err)
	}

	wanted := make(map[string]bool, len(values))
	for _, v := range values {
		wanted[v] = true
		if existing[v] {
			continue
		}
		//nolint:gosec // table and column names are package constants
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (workflow_id, %s) VALUES (?, ?)", f.table, f.column), id, v); err != nil {
			return fmt.Errorf("inserting %s row: %w", f.table, err)
		}
		existing[v] = true
	}

	for v := range existing {
		if wanted[v] {
			continue
		}
		//nolint:gosec // table and column names are package constants
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE workflow_id = ? AND %s = ?", f.table, f.column), id, v); err != nil {
			return fmt.Errorf("deleting %s row: %w", f.table, err)
		}
	}
	return nil
}

// listFacet returns the distinct values of a membership table in alphabetical order.
func (w *workflowStore) listFacet(ctx context.Context, f facet) ([]string, error) {
	//nolint:gosec // table and column names are package constants
	rows, err := w.store.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY %s", f.column, f.table, f.column))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", f.column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", f.column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListNodeTypes returns all known node-type names in alphabetical order.
func (w *workflowStore) ListNodeTypes(ctx context.Context) ([]string, error) {
	return w.listFacet(ctx, nodeFacet)
}

// ListCategories returns all known category names in alphabetical order.
func (w *workflowStore) ListCategories(ctx context.Context) ([]string, error) {
	return w.listFacet(ctx, categoryFacet)
}

// BackfillMemberships rebuilds membership rows from the stored node and
// category sets. It only runs when both membership tables are empty while
// records exist.
func (w *workflowStore) BackfillMemberships(ctx context.Context) (int, error) {
	var processed int
	err := w.store.writeTx(ctx, func(tx *sql.Tx) error {
		var workflows, memberships int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows").Scan(&workflows); err != nil {
			return fmt.Errorf("counting workflows: %w", err)
		}
		if err := tx.QueryRowContext(ctx, `
			SELECT (SELECT COUNT(*) FROM workflow_nodes) + (SELECT COUNT(*) FROM workflow_categories)
		`).Scan(&memberships); err != nil {
			return fmt.Errorf("counting memberships: %w", err)
		}
		if workflows == 0 || memberships > 0 {
			return nil
		}

		sets, err := loadFacetSets(ctx, tx)
		if err != nil {
			return err
		}
		for _, set := range sets {
			if err := syncMemberships(ctx, tx, set.id, set.nodes, set.categories); err != nil {
				return err
			}
		}
		processed = len(sets)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

// facetSet is a record's stored node and category sets.
type facetSet struct {
	id         int64
	nodes      []string
	categories []string
}

// loadFacetSets reads every record's stored sets. Rows are fully read
// before the caller writes.
func loadFacetSets(ctx context.Context, tx *sql.Tx) ([]facetSet, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, nodes, categories FROM workflows ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying workflow sets: %w", err)
	}
	defer rows.Close()

	var sets []facetSet //nolint:prealloc // size unknown from query
	for rows.Next() {
		var set facetSet
		var nodesJSON, categoriesJSON string
		if err := rows.Scan(&set.id, &nodesJSON, &categoriesJSON); err != nil {
			return nil, fmt.Errorf("scanning workflow sets: %w", err)
		}
		if err := json.Unmarshal([]byte(nodesJSON), &set.nodes); err != nil {
			return nil, fmt.Errorf("unmarshaling nodes of workflow %d: %w", set.id, err)
		}
		if err := json.Unmarshal([]byte(categoriesJSON), &set.categories); err != nil {
			return nil, fmt.Errorf("unmarshaling categories of workflow %d: %w", set.id, err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}
