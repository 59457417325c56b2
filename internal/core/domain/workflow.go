package domain

import (
	"slices"
	"time"
)

const (
	// DefaultWorkflowName is assigned when a document carries no name.
	DefaultWorkflowName = "Untitled"

	// CategoryOther is the sentinel category for workflows whose nodes map to
	// no known category. A stored category set is never empty.
	CategoryOther = "Other"

	// CategoryAI is force-added for node types carrying an AI vendor marker.
	CategoryAI = "AI/LLM"

	// TriggerComplex is the trigger classification when no known trigger node is present.
	TriggerComplex = "Complex"
)

// genericNames are placeholder names an enrichment suggestion may replace.
var genericNames = []string{"", DefaultWorkflowName, "My workflow", "New workflow", "workflow"}

// IsGenericName reports whether name is an editor placeholder rather than
// a name chosen by the workflow's author.
func IsGenericName(name string) bool {
	return slices.Contains(genericNames, name)
}

// Workflow is the canonical stored catalogue record.
type Workflow struct {
	// ID is the surrogate identifier assigned by the store.
	ID int64 `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Description is the document's description or one derived from node names.
	Description string `json:"description" yaml:"description"`

	// Nodes is the sorted set of node-type short names.
	Nodes []string `json:"nodes" yaml:"nodes"`

	// Categories is the sorted, never empty set of category labels.
	Categories []string `json:"categories" yaml:"categories"`

	// NodeCount is the number of nodes in the original document.
	NodeCount int `json:"node_count" yaml:"node_count"`

	// TriggerType is the trigger classification, TriggerComplex by default.
	TriggerType string `json:"trigger_type" yaml:"trigger_type"`

	// OriginURL is where the document was fetched from (optional).
	OriginURL string `json:"origin_url,omitempty" yaml:"origin_url,omitempty"`

	// OriginGroup identifies the repository the document belongs to (optional).
	OriginGroup string `json:"origin_group,omitempty" yaml:"origin_group,omitempty"`

	// Fingerprint is the content-addressed dedup key.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	// RawContent is the original document text, stored verbatim.
	// It is omitted from listings to keep payloads small.
	RawContent string `json:"-" yaml:"-"`

	// Enrichment holds externally computed scores and summaries.
	Enrichment Enrichment `json:"enrichment" yaml:"enrichment"`

	// CreatedAt is when the record was first stored.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the record was last mutated.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Enriched reports whether the enrichment collaborator has processed the record.
func (w *Workflow) Enriched() bool {
	return !w.Enrichment.AnalyzedAt.IsZero()
}

// Enrichment is the write-only block populated by the enrichment collaborator.
// The core never computes these values.
type Enrichment struct {
	Usefulness   int `json:"usefulness" yaml:"usefulness"`
	Universality int `json:"universality" yaml:"universality"`
	Complexity   int `json:"complexity" yaml:"complexity"`
	Scalability  int `json:"scalability" yaml:"scalability"`

	Summary             string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags                []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	UseCases            []string `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty" yaml:"target_audience,omitempty"`
	IntegrationsSummary string   `json:"integrations_summary,omitempty" yaml:"integrations_summary,omitempty"`
	DifficultyLevel     string   `json:"difficulty_level,omitempty" yaml:"difficulty_level,omitempty"`

	// SuggestedName replaces the workflow name when the current one is generic.
	// It is not persisted as part of the enrichment block.
	SuggestedName string `json:"suggested_name,omitempty" yaml:"-"`

	// AnalyzedAt is when the enrichment was applied. Zero means never.
	AnalyzedAt time.Time `json:"analyzed_at,omitzero" yaml:"analyzed_at,omitempty"`
}
