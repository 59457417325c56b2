package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

func TestEnrichPendingCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("enrich", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Every workflow is enriched.")
	assert.Equal(t, domain.DefaultPageSize, ts.enrichment.lastLimit)

	ts.enrichment.pending = []domain.Workflow{{ID: 2, Name: "Untitled", NodeCount: 5}}
	out, err = executeCommand("enrich", "pending", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "[2] Untitled (5 nodes)")
	assert.Equal(t, 5, ts.enrichment.lastLimit)
}

func TestEnrichApplyCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	doc := `{"usefulness": 8, "complexity": 3, "summary": "Routes leads", "suggested_name": "Lead router"}`
	out, err := executeCommandWithInput(strings.NewReader(doc), "enrich", "apply", "4", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Enriched workflow 4.")
	assert.Equal(t, int64(4), ts.enrichment.appliedID)
	require.NotNil(t, ts.enrichment.applied)
	assert.Equal(t, 8, ts.enrichment.applied.Usefulness)
	assert.Equal(t, "Lead router", ts.enrichment.applied.SuggestedName)
}

func TestEnrichApplyCmd_File(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "enrichment.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scalability": 6, "tags": ["crm"]}`), 0o600))

	_, err := executeCommand("enrich", "apply", "4", path)

	require.NoError(t, err)
	assert.Equal(t, 6, ts.enrichment.applied.Scalability)
	assert.Equal(t, []string{"crm"}, ts.enrichment.applied.Tags)
}

func TestEnrichApplyCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		input   string
		svcErr  error
		wantErr string
	}{
		{"unknown field", []string{"enrich", "apply", "4", "-"}, `{"usefullness": 8}`, nil, "decoding enrichment"},
		{"not json", []string{"enrich", "apply", "4", "-"}, `scores`, nil, "decoding enrichment"},
		{"missing file", []string{"enrich", "apply", "4", "/does/not/exist.json"}, "", nil, "opening enrichment"},
		{"bad id", []string{"enrich", "apply", "x", "-"}, `{}`, nil, "invalid id"},
		{"rejected scores", []string{"enrich", "apply", "4", "-"}, `{"usefulness": 11}`, domain.ErrInvalidInput, "invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			ts.enrichment.err = tt.svcErr

			_, err := executeCommandWithInput(strings.NewReader(tt.input), tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
