package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/flowhub/internal/adapters/driving/api"
	"github.com/custodia-labs/flowhub/internal/adapters/driving/mcp"
	"github.com/custodia-labs/flowhub/internal/logger"
)

var (
	serveAddr   string
	serveNoSync bool
	serveNoMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long: `Serves the catalogue over HTTP:

  GET    /api/search?q=&category=&node=&min_score=&page=&page_size=&sort=
  GET    /api/workflows/{id}            metadata and enrichment
  GET    /api/workflows/{id}/json       stored document as a download
  PATCH  /api/workflows/{id}            {"name": "..."}
  DELETE /api/workflows/{id}
  PUT    /api/workflows/{id}/enrichment
  GET    /api/enrichment/pending?limit=
  POST   /api/import/json               body is the workflow document
  POST   /api/import/url                {"url": "..."}
  GET    /api/filters, /api/stats, /api/verify
  POST   /api/reindex
  GET    /api/repos, POST /api/repos, PATCH|DELETE /api/repos/{id}
  POST   /api/repos/{id}/sync, /api/repos/sync-all
  GET    /api/repos/{id}/status

The MCP server is mounted at /mcp. Registered repositories are re-synced
every sync.interval and the search index is audited daily.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveNoSync, "no-sync", false, "disable scheduled repository sync and index audit")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP server at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && cfg != nil {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		return errors.New("no listen address: set --addr or server.addr")
	}

	ports := api.Ports{
		Catalog:    catalogService,
		Ingest:     ingestService,
		Repos:      repoService,
		Enrichment: enrichmentService,
	}
	if !serveNoMCP {
		mcpServer, err := mcp.NewServer(mcpPorts(false))
		if err != nil {
			return err
		}
		ports.MCP = mcpServer.Handler()
	}

	server, err := api.NewServer(ports)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	if schedulerService != nil && !serveNoSync {
		g.Go(func() error {
			if err := schedulerService.Start(ctx); err != nil {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return schedulerService.Stop()
		})
	}

	cmd.Printf("Serving flowhub on http://%s\n", addr)
	err = g.Wait()
	logger.Info("Server stopped")
	return err
}
