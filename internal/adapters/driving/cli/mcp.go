package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search the
workflow catalogue and read stored workflows.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Use --allow-import to let assistants add workflows with import_workflow.

Examples:
  # Stdio mode (default, for Claude Desktop)
  flowhub mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  flowhub mcp serve --port 8081

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "flowhub": {
        "command": "/path/to/flowhub",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("allow-import", false, "expose the import_workflow tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func mcpPorts(allowImport bool) *mcp.Ports {
	ports := &mcp.Ports{
		Catalog: catalogService,
		Repos:   repoService,
	}
	if allowImport {
		ports.Ingest = ingestService
	}
	return ports
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	allowImport, err := cmd.Flags().GetBool("allow-import")
	if err != nil {
		return fmt.Errorf("getting allow-import flag: %w", err)
	}

	server, err := mcp.NewServer(mcpPorts(allowImport))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
