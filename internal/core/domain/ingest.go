package domain

// IngestStatus is the per-item outcome of an ingestion attempt.
type IngestStatus string

const (
	// IngestStatusOK means a new record was stored.
	IngestStatusOK IngestStatus = "ok"

	// IngestStatusDuplicate means a record with the same fingerprint already exists.
	IngestStatusDuplicate IngestStatus = "duplicate"

	// IngestStatusError means the document failed validation.
	IngestStatusError IngestStatus = "error"
)

// IngestResult is the outcome of ingesting a single document.
type IngestResult struct {
	Status IngestStatus `json:"status"`

	// ID is set when Status is IngestStatusOK.
	ID int64 `json:"id,omitempty"`

	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint,omitempty"`

	// Error describes a validation failure.
	Error string `json:"error,omitempty"`
}

// InsertOutcome is what the store reports for one parsed workflow in a chunk.
type InsertOutcome struct {
	// ID is the new record id, zero for duplicates.
	ID int64

	// Duplicate is true when the fingerprint was already present.
	Duplicate bool
}

// BatchResult aggregates the outcome of one ingestion run.
// Each run owns its result; nothing is shared between runs.
type BatchResult struct {
	// RunID identifies the run in logs and traces.
	RunID string `json:"run_id"`

	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
	Total      int `json:"total"`

	// Items holds per-document outcomes in input order.
	Items []IngestResult `json:"items,omitempty"`
}

// Add folds a single item outcome into the aggregate counts.
// Items is left to the caller.
func (r *BatchResult) Add(item IngestResult) {
	r.Total++
	switch item.Status {
	case IngestStatusOK:
		r.Imported++
	case IngestStatusDuplicate:
		r.Duplicates++
	case IngestStatusError:
		r.Errors++
	}
}

// BatchOptions configures a batch ingestion run.
type BatchOptions struct {
	// ChunkSize bounds the number of documents per transaction.
	// Zero uses the service default.
	ChunkSize int

	// Progress, if set, is called after each committed chunk with the
	// running totals of this run.
	Progress func(BatchResult)

	// KeepItems retains per-item outcomes in the result.
	KeepItems bool
}
