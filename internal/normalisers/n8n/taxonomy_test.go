package n8n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxonomy(t *testing.T) {
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)

	assert.Equal(t, "Communication", tax.Categories["n8n-nodes-base.slack"])
	assert.Equal(t, "HTTP/API", tax.Categories["n8n-nodes-base.webhook"])
	assert.Equal(t, "Webhook", tax.Triggers["n8n-nodes-base.webhook"])
	assert.Contains(t, tax.VendorPrefixes, "n8n-nodes-base.")
	assert.Contains(t, tax.AIMarkers, "openai")
}

func TestTaxonomy_ShortName(t *testing.T) {
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)

	assert.Equal(t, "slack", tax.ShortName("n8n-nodes-base.slack"))
	assert.Equal(t, "agent", tax.ShortName("@n8n/n8n-nodes-langchain.agent"))
	assert.Equal(t, "custom.node", tax.ShortName("custom.node"))
}

func TestTaxonomy_IsAI(t *testing.T) {
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)

	assert.True(t, tax.IsAI("@n8n/n8n-nodes-langchain.agent"))
	assert.True(t, tax.IsAI("n8n-nodes-base.OpenAI"))
	assert.False(t, tax.IsAI("n8n-nodes-base.slack"))
}

func TestLoadTaxonomy_EmptyPathUsesDefault(t *testing.T) {
	tax, err := LoadTaxonomy("")
	require.NoError(t, err)
	assert.Equal(t, "Email", tax.Categories["n8n-nodes-base.gmail"])
}

func TestLoadTaxonomy_OverlayExtendsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.toml")
	overlay := `
[categories]
"n8n-nodes-base.slack" = "Chat"
"n8n-nodes-base.zendesk" = "Support"

[triggers]
"n8n-nodes-base.zendeskTrigger" = "Zendesk"
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0600))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)

	assert.Equal(t, "Chat", tax.Categories["n8n-nodes-base.slack"])
	assert.Equal(t, "Support", tax.Categories["n8n-nodes-base.zendesk"])
	assert.Equal(t, "Email", tax.Categories["n8n-nodes-base.gmail"])
	assert.Equal(t, "Zendesk", tax.Triggers["n8n-nodes-base.zendeskTrigger"])
	assert.Contains(t, tax.VendorPrefixes, "n8n-nodes-base.")
}

func TestLoadTaxonomy_Errors(t *testing.T) {
	_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[categories\n"), 0600))
	_, err = LoadTaxonomy(path)
	assert.Error(t, err)
}
