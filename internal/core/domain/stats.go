package domain

// CatalogStats summarises the catalogue.
type CatalogStats struct {
	TotalWorkflows int     `json:"total_workflows"`
	TotalRepos     int     `json:"total_repos"`
	UniqueNodes    int     `json:"unique_nodes"`
	EnrichedCount  int     `json:"enriched_count"`
	AvgUsefulness  float64 `json:"avg_usefulness"`
}

// ConsistencyReport lists records whose derived rows disagree with the
// record table. An empty report means the catalogue is consistent.
type ConsistencyReport struct {
	Workflows int `json:"workflows"`

	// MissingIndex holds record ids without a search-index row.
	MissingIndex []int64 `json:"missing_index,omitempty"`

	// OrphanIndex holds search-index rows without a record.
	OrphanIndex []int64 `json:"orphan_index,omitempty"`

	// StaleMemberships holds record ids whose membership rows differ from
	// the record's node or category sets.
	StaleMemberships []int64 `json:"stale_memberships,omitempty"`
}

// Consistent reports whether no discrepancies were found.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.MissingIndex) == 0 && len(r.OrphanIndex) == 0 && len(r.StaleMemberships) == 0
}
