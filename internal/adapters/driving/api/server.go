// Package api serves the workflow catalogue as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// ErrMissingCatalogService is returned when the catalogue service is not provided.
var ErrMissingCatalogService = errors.New("api: catalog service is required")

// Ports aggregates the driving ports served over HTTP. Only Catalog is
// required; routes for the others are registered when they are set.
type Ports struct {
	Catalog    driving.CatalogService
	Ingest     driving.IngestService
	Repos      driving.RepoService
	Enrichment driving.EnrichmentService

	// MCP, when set, is mounted under /mcp.
	MCP http.Handler
}

// Server is the HTTP API server.
type Server struct {
	ports Ports
	echo  *echo.Echo
}

// NewServer creates the server and registers its routes.
func NewServer(ports Ports) (*Server, error) {
	if ports.Catalog == nil {
		return nil, ErrMissingCatalogService
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("%s %s %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	s := &Server{ports: ports, echo: e}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.health)

	g := s.echo.Group("/api")
	g.GET("/search", s.search)
	g.GET("/filters", s.filters)
	g.GET("/stats", s.stats)
	g.GET("/verify", s.verify)
	g.POST("/reindex", s.reindex)

	g.GET("/workflows/:id", s.getWorkflow)
	g.GET("/workflows/:id/json", s.getWorkflowJSON)
	g.PATCH("/workflows/:id", s.renameWorkflow)
	g.DELETE("/workflows/:id", s.deleteWorkflow)

	if s.ports.Ingest != nil {
		g.POST("/import/json", s.importJSON)
		g.POST("/import/url", s.importURL)
	}

	if s.ports.Enrichment != nil {
		g.PUT("/workflows/:id/enrichment", s.applyEnrichment)
		g.GET("/enrichment/pending", s.pendingEnrichment)
	}

	if s.ports.Repos != nil {
		r := g.Group("/repos")
		r.GET("", s.listRepos)
		r.POST("", s.registerRepo)
		r.POST("/sync-all", s.syncAllRepos)
		r.PATCH("/:id", s.setRepoEnabled)
		r.DELETE("/:id", s.deleteRepo)
		r.POST("/:id/sync", s.syncRepo)
		r.GET("/:id/status", s.repoStatus)
	}

	if s.ports.MCP != nil {
		s.echo.Any("/mcp", echo.WrapHandler(s.ports.MCP))
		s.echo.Any("/mcp/*", echo.WrapHandler(s.ports.MCP))
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
