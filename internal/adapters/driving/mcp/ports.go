package mcp

import (
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog provides search and reads.
	Catalog driving.CatalogService

	// Ingest stores new workflow documents. Optional; import_workflow is
	// only registered when it is set.
	Ingest driving.IngestService

	// Repos lists repository registrations. Optional.
	Repos driving.RepoService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
