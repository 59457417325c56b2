package domain

import "time"

// RepoRegistration tracks a remote origin group that workflows were
// imported from. Deleting it removes every workflow in that group.
type RepoRegistration struct {
	ID int64 `json:"id"`

	// URL is the canonical repository URL and the origin group of its workflows.
	URL string `json:"url"`

	// LastSyncedAt is zero until the first successful ingestion.
	LastSyncedAt time.Time `json:"last_synced_at,omitzero"`

	// WorkflowCount is the imported count reported by the last sync.
	WorkflowCount int `json:"workflow_count"`

	// Enabled repositories take part in SyncAll.
	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
}
