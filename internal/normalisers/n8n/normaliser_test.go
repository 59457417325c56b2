package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

const slackWebhookWorkflow = `{
  "name": "Slack relay",
  "nodes": [
    {"name": "Incoming", "type": "n8n-nodes-base.webhook"},
    {"name": "Post to Slack", "type": "n8n-nodes-base.slack"}
  ]
}`

func newTestNormaliser(t *testing.T) *Normaliser {
	t.Helper()
	n, err := NewDefault()
	require.NoError(t, err)
	return n
}

func TestNormalise_KnownNodes(t *testing.T) {
	n := newTestNormaliser(t)

	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{
		Content:     []byte(slackWebhookWorkflow),
		OriginURL:   "file://slack.json",
		OriginGroup: "local",
	})
	require.NoError(t, err)

	assert.Equal(t, "Slack relay", parsed.Name)
	assert.Equal(t, []string{"slack", "webhook"}, parsed.Nodes)
	assert.Equal(t, []string{"Communication", "HTTP/API"}, parsed.Categories)
	assert.Equal(t, 2, parsed.NodeCount)
	assert.Equal(t, "Webhook", parsed.TriggerType)
	assert.Equal(t, "Nodes: Incoming, Post to Slack", parsed.Description)
	assert.Equal(t, slackWebhookWorkflow, parsed.RawContent)
	assert.Equal(t, domain.Fingerprint([]byte(slackWebhookWorkflow)), parsed.Fingerprint)
	assert.Equal(t, "file://slack.json", parsed.OriginURL)
	assert.Equal(t, "local", parsed.OriginGroup)
}

func TestNormalise_UnknownNodesFallBackToOther(t *testing.T) {
	n := newTestNormaliser(t)

	raw := `{"nodes":[{"name":"Custom","type":"community.somethingNew"}]}`
	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(raw)})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.CategoryOther}, parsed.Categories)
	assert.Equal(t, domain.TriggerComplex, parsed.TriggerType)
	assert.Equal(t, domain.DefaultWorkflowName, parsed.Name)
	assert.Equal(t, []string{"community.somethingNew"}, parsed.Nodes)
}

func TestNormalise_AIMarkerForcesCategory(t *testing.T) {
	n := newTestNormaliser(t)

	raw := `{"name":"Bot","nodes":[
		{"name":"Chat","type":"@n8n/n8n-nodes-langchain.chatTrigger"},
		{"name":"Model","type":"@n8n/n8n-nodes-langchain.lmChatMistral"},
		{"name":"Sheet","type":"n8n-nodes-base.googleSheets"}
	]}`
	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(raw)})
	require.NoError(t, err)

	assert.Equal(t, []string{"AI/LLM", "Spreadsheets"}, parsed.Categories)
	assert.Equal(t, "Chat", parsed.TriggerType)
	assert.Equal(t, []string{"chatTrigger", "googleSheets", "lmChatMistral"}, parsed.Nodes)
}

func TestNormalise_FirstTriggerInDocumentOrderWins(t *testing.T) {
	n := newTestNormaliser(t)

	raw := `{"nodes":[
		{"name":"Set","type":"n8n-nodes-base.set"},
		{"name":"Every hour","type":"n8n-nodes-base.scheduleTrigger"},
		{"name":"Hook","type":"n8n-nodes-base.webhook"}
	]}`
	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(raw)})
	require.NoError(t, err)

	assert.Equal(t, "Scheduled", parsed.TriggerType)
}

func TestNormalise_WrappedInArray(t *testing.T) {
	n := newTestNormaliser(t)

	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{
		Content: []byte("[" + slackWebhookWorkflow + "]"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Slack relay", parsed.Name)
}

func TestNormalise_DocumentDescriptionWins(t *testing.T) {
	n := newTestNormaliser(t)

	raw := `{"name":"x","description":"Posts alerts","nodes":[{"name":"A","type":"n8n-nodes-base.slack"}]}`
	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(raw)})
	require.NoError(t, err)
	assert.Equal(t, "Posts alerts", parsed.Description)
}

func TestNormalise_DescriptionTruncatesNodeNames(t *testing.T) {
	n := newTestNormaliser(t)

	nodes := make([]map[string]string, 13)
	for i := range nodes {
		nodes[i] = map[string]string{"name": fmt.Sprintf("n%d", i), "type": "n8n-nodes-base.set"}
	}
	raw, err := json.Marshal(map[string]any{"name": "Many", "nodes": nodes})
	require.NoError(t, err)

	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: raw})
	require.NoError(t, err)

	assert.Equal(t, "Nodes: n0, n1, n2, n3, n4, n5, n6, n7, n8, n9 (+3 more)", parsed.Description)
	assert.Equal(t, 13, parsed.NodeCount)
	assert.Equal(t, []string{"set"}, parsed.Nodes)
}

func TestNormalise_ValidationErrors(t *testing.T) {
	n := newTestNormaliser(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"too short", `{"nodes":[]}`},
		{"malformed", `{"name": "broken", "nodes": [`},
		{"not an object", `"just a string that is long enough"`},
		{"number", `12345678901234567890123`},
		{"empty array", `[                        ]`},
		{"array of strings", `["a workflow in a list", "x"]`},
		{"missing nodes", `{"name": "no nodes here at all"}`},
		{"empty nodes", `{"name": "nothing inside", "nodes": []}`},
		{"nodes not a list", `{"name": "odd", "nodes": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(tt.raw)})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidWorkflow)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestNormalise_CountsUntypedNodes(t *testing.T) {
	n := newTestNormaliser(t)

	raw := `{"nodes":[{"name":"Sticky"},{"name":"Hook","type":"n8n-nodes-base.webhook"},"junk"]}`
	parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: []byte(raw)})
	require.NoError(t, err)

	assert.Equal(t, 3, parsed.NodeCount)
	assert.Equal(t, []string{"webhook"}, parsed.Nodes)
}

// Generated workflows always yield a non-empty category set and a node
// count equal to the generated node list.
func TestNormalise_Properties(t *testing.T) {
	n := newTestNormaliser(t)
	types := []string{
		"n8n-nodes-base.slack", "n8n-nodes-base.webhook", "n8n-nodes-base.set",
		"@n8n/n8n-nodes-langchain.agent", "custom.node", "n8n-nodes-base.cron",
	}

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 30).Draw(rt, "count")
		nodes := make([]map[string]string, count)
		for i := range nodes {
			nodes[i] = map[string]string{
				"name": fmt.Sprintf("node %d", i),
				"type": rapid.SampledFrom(types).Draw(rt, "type"),
			}
		}
		raw, err := json.Marshal(map[string]any{"name": "generated", "nodes": nodes})
		if err != nil {
			rt.Fatal(err)
		}

		parsed, err := n.Normalise(context.Background(), domain.RawWorkflow{Content: raw})
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if parsed.NodeCount != count {
			rt.Fatalf("node count = %d, want %d", parsed.NodeCount, count)
		}
		if len(parsed.Categories) == 0 {
			rt.Fatalf("empty category set")
		}
		if parsed.TriggerType == "" {
			rt.Fatalf("empty trigger type")
		}
	})
}
