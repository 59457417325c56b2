package domain

import "math"

const (
	// DefaultPageSize is used when a query does not specify a page size.
	DefaultPageSize = 24

	// MaxPageSize caps the page size of a single read.
	MaxPageSize = 100
)

// SortMode selects the ordering of search results.
// Every mode falls back to recency for equal primary values.
type SortMode string

const (
	SortRecent         SortMode = "recent"
	SortUsefulness     SortMode = "usefulness"
	SortComplexityAsc  SortMode = "complexity_asc"
	SortComplexityDesc SortMode = "complexity_desc"
	SortNodeCount      SortMode = "nodes"
)

// ParseSortMode maps a client-supplied string to a SortMode.
// Unknown values fall back to SortRecent.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortUsefulness, SortComplexityAsc, SortComplexityDesc, SortNodeCount:
		return SortMode(s)
	default:
		return SortRecent
	}
}

// SearchQuery describes a filtered, sorted, paginated catalogue read.
// Empty fields are inactive predicates.
type SearchQuery struct {
	// Text is split on whitespace into prefix-match tokens joined by OR.
	Text string

	// Category filters by exact category label.
	Category string

	// NodeType filters by exact node-type short name.
	NodeType string

	// MinScore filters on enrichment usefulness when greater than zero.
	MinScore int

	// Page is 1-based.
	Page int

	PageSize int
	Sort     SortMode
}

// Normalize clamps paging values and resolves the sort mode.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	// Keep Offset from overflowing.
	if maxPage := math.MaxInt / q.PageSize; q.Page > maxPage {
		q.Page = maxPage
	}
	q.Sort = ParseSortMode(string(q.Sort))
	if q.MinScore < 0 {
		q.MinScore = 0
	}
	return q
}

// Offset returns the number of rows to skip for the query's page.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// SearchPage is one page of search results with pagination metadata.
type SearchPage struct {
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	Workflows  []Workflow `json:"workflows"`
}

// TotalPages is the ceiling division of total by pageSize.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
