package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	allow := mcpServeCmd.Flags().Lookup("allow-import")
	require.NotNil(t, allow)
	assert.Equal(t, "false", allow.DefValue)
}

func TestMCPPorts_ImportIsOptIn(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ports := mcpPorts(false)
	assert.Equal(t, ts.catalog, ports.Catalog)
	assert.Equal(t, ts.repos, ports.Repos)
	assert.Nil(t, ports.Ingest)
	assert.NoError(t, ports.Validate())

	ports = mcpPorts(true)
	assert.Equal(t, ts.ingest, ports.Ingest)
}

func TestServeCmd_Flags(t *testing.T) {
	for _, name := range []string{"addr", "no-sync", "no-mcp"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), name)
	}
	assert.Contains(t, serveCmd.Long, "/api/search")
	assert.Contains(t, serveCmd.Long, "/mcp")
}
