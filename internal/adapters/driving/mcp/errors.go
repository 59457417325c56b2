// Package mcp provides an MCP (Model Context Protocol) server adapter for flowhub.
// It lets AI assistants search and read the local workflow catalogue.
package mcp

import (
	"errors"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// ErrMissingCatalogService is returned when the catalogue service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")

// toolError passes caller mistakes through unchanged so they surface as tool
// errors, and logs failures of the catalogue itself before returning them.
func toolError(tool string, err error) error {
	if !domain.IsClientError(err) {
		logger.Error("mcp %s: %v", tool, err)
	}
	return err
}

// errMissingIngest is returned by import_workflow when no ingest service is wired.
var errMissingIngest = errors.New("mcp: workflow import is not enabled on this server")
