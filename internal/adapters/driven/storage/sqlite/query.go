package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// orderClauses maps sort modes to their primary ORDER BY term.
var orderClauses = map[domain.SortMode]string{
	domain.SortRecent:         "created_at DESC",
	domain.SortUsefulness:     "usefulness DESC",
	domain.SortComplexityAsc:  "complexity ASC",
	domain.SortComplexityDesc: "complexity DESC",
	domain.SortNodeCount:      "node_count DESC",
}

// tiebreak makes every ordering total so that pages never overlap.
const tiebreak = "created_at DESC, id DESC"

// composedQuery is a WHERE clause with its positional arguments.
type composedQuery struct {
	where string
	args  []any
}

// composeFilter builds the WHERE clause for the active predicates of q.
// Inactive predicates contribute nothing.
func composeFilter(q domain.SearchQuery) composedQuery {
	var clauses []string
	var args []any

	if strings.TrimSpace(q.Text) != "" {
		// Text made only of punctuation is still a predicate; it matches nothing.
		if match := ftsMatchExpr(q.Text); match != "" {
			clauses = append(clauses, "id IN (SELECT rowid FROM workflows_fts WHERE workflows_fts MATCH ?)")
			args = append(args, match)
		} else {
			clauses = append(clauses, "0")
		}
	}
	if q.Category != "" {
		clauses = append(clauses, "id IN (SELECT workflow_id FROM workflow_categories WHERE category = ?)")
		args = append(args, q.Category)
	}
	if q.NodeType != "" {
		clauses = append(clauses, "id IN (SELECT workflow_id FROM workflow_nodes WHERE node_type = ?)")
		args = append(args, q.NodeType)
	}
	if q.MinScore > 0 {
		clauses = append(clauses, "usefulness >= ?")
		args = append(args, q.MinScore)
	}

	if len(clauses) == 0 {
		return composedQuery{}
	}
	return composedQuery{where: " WHERE " + strings.Join(clauses, " AND "), args: args}
}

// ftsMatchExpr turns free text into an FTS5 expression of quoted prefix
// tokens joined by OR. Embedded double quotes are doubled so that user text
// is never interpreted as FTS5 syntax. Tokens without a letter or digit
// cannot match anything and are dropped.
func ftsMatchExpr(text string) string {
	var terms []string
	for _, tok := range strings.Fields(text) {
		if !strings.ContainsFunc(tok, isWordRune) {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " OR ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// orderBy returns the full ORDER BY clause for a sort mode.
func orderBy(mode domain.SortMode) string {
	primary, ok := orderClauses[mode]
	if !ok {
		primary = orderClauses[domain.SortRecent]
	}
	if primary == "created_at DESC" {
		return " ORDER BY " + tiebreak
	}
	return " ORDER BY " + primary + ", " + tiebreak
}

// Search runs a faceted, paginated query. The count and the page are read
// in one transaction so that they describe the same snapshot.
func (w *workflowStore) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchPage, error) {
	q := query.Normalize()
	filter := composeFilter(q)

	page := &domain.SearchPage{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Workflows: []domain.Workflow{},
	}

	err := w.store.readTx(ctx, func(tx *sql.Tx) error {
		//nolint:gosec // clauses are composed from constants; values are bound
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM workflows"+filter.where, filter.args...).Scan(&page.Total); err != nil {
			return fmt.Errorf("counting search results: %w", err)
		}
		if page.Total == 0 || q.Offset() >= page.Total {
			return nil
		}

		args := append(append([]any{}, filter.args...), q.PageSize, q.Offset())
		//nolint:gosec // clauses are composed from constants; values are bound
		rows, err := tx.QueryContext(ctx,
			"SELECT"+listColumns+" FROM workflows"+filter.where+orderBy(q.Sort)+" LIMIT ? OFFSET ?",
			args...)
		if err != nil {
			return fmt.Errorf("querying search results: %w", err)
		}
		defer rows.Close()

		page.Workflows, err = scanWorkflows(rows, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	page.TotalPages = domain.TotalPages(page.Total, page.PageSize)
	return page, nil
}
