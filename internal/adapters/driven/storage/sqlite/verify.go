package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// Verify audits the record table against the search index and the
// membership tables. All reads happen in one snapshot.
func (w *workflowStore) Verify(ctx context.Context) (*domain.ConsistencyReport, error) {
	report := &domain.ConsistencyReport{}

	err := w.store.readTx(ctx, func(tx *sql.Tx) error {
		records, err := idBitmap(ctx, tx, "SELECT id FROM workflows")
		if err != nil {
			return err
		}
		indexed, err := idBitmap(ctx, tx, "SELECT rowid FROM workflows_fts")
		if err != nil {
			return err
		}
		report.Workflows = int(records.GetCardinality())
		report.MissingIndex = toIDs(roaring64.AndNot(records, indexed))
		report.OrphanIndex = toIDs(roaring64.AndNot(indexed, records))

		sets, err := loadFacetSets(ctx, tx)
		if err != nil {
			return err
		}
		expectedNodes := make(map[string]*roaring64.Bitmap)
		expectedCategories := make(map[string]*roaring64.Bitmap)
		for _, set := range sets {
			addMembers(expectedNodes, set.id, set.nodes)
			addMembers(expectedCategories, set.id, set.categories)
		}

		stale := roaring64.New()
		for _, check := range []struct {
			f        facet
			expected map[string]*roaring64.Bitmap
		}{
			{nodeFacet, expectedNodes},
			{categoryFacet, expectedCategories},
		} {
			actual, err := facetBitmaps(ctx, tx, check.f)
			if err != nil {
				return err
			}
			stale.Or(diffMembers(check.expected, actual))
		}
		report.StaleMemberships = toIDs(stale)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying catalogue: %w", err)
	}
	return report, nil
}

// idBitmap collects a single integer column into a bitmap.
func idBitmap(ctx context.Context, tx *sql.Tx, query string) (*roaring64.Bitmap, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying ids: %w", err)
	}
	defer rows.Close()

	bm := roaring64.New()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		bm.Add(uint64(id)) //nolint:gosec // ids are positive
	}
	return bm, rows.Err()
}

// facetBitmaps reads a membership table into one bitmap of workflow ids per value.
func facetBitmaps(ctx context.Context, tx *sql.Tx, f facet) (map[string]*roaring64.Bitmap, error) {
	//nolint:gosec // table and column names are package constants
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT workflow_id, %s FROM %s", f.column, f.table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", f.table, err)
	}
	defer rows.Close()

	members := make(map[string]*roaring64.Bitmap)
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", f.table, err)
		}
		addMembers(members, id, []string{value})
	}
	return members, rows.Err()
}

func addMembers(members map[string]*roaring64.Bitmap, id int64, values []string) {
	for _, v := range values {
		bm, ok := members[v]
		if !ok {
			bm = roaring64.New()
			members[v] = bm
		}
		bm.Add(uint64(id)) //nolint:gosec // ids are positive
	}
}

// diffMembers returns the ids whose membership differs for any value.
func diffMembers(expected, actual map[string]*roaring64.Bitmap) *roaring64.Bitmap {
	diff := roaring64.New()
	for v, want := range expected {
		if got, ok := actual[v]; ok {
			diff.Or(roaring64.Xor(want, got))
		} else {
			diff.Or(want)
		}
	}
	for v, got := range actual {
		if _, ok := expected[v]; !ok {
			diff.Or(got)
		}
	}
	return diff
}

func toIDs(bm *roaring64.Bitmap) []int64 {
	if bm.IsEmpty() {
		return nil
	}
	ids := make([]int64, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ids = append(ids, int64(it.Next())) //nolint:gosec // ids fit int64
	}
	return ids
}
