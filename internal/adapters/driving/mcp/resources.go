package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for flowhub resources.
	uriScheme = "flowhub://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "All workflow categories",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "nodes",
		Name:        "nodes",
		Description: "All node types used by stored workflows",
		MIMEType:    "application/json",
	}, s.handleNodesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "repos",
		Name:        "repos",
		Description: "Registered workflow repositories",
		MIMEType:    "application/json",
	}, s.handleReposResource)

	// Template for stored workflow documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "workflows/{id}",
		Name:        "workflow-document",
		Description: "The stored JSON document of a workflow",
		MIMEType:    "application/json",
	}, s.handleWorkflowResource)
}

func (s *Server) handleCategoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	values, err := s.ports.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return jsonResource(req.Params.URI, orEmpty(values))
}

func (s *Server) handleNodesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	values, err := s.ports.Catalog.ListNodeTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing node types: %w", err)
	}
	return jsonResource(req.Params.URI, orEmpty(values))
}

// handleReposResource returns the repository registrations, or an empty list
// when the server was started without a repo service.
func (s *Server) handleReposResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Repos == nil {
		return jsonResource(req.Params.URI, []domain.RepoRegistration{})
	}

	repos, err := s.ports.Repos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repos: %w", err)
	}
	if repos == nil {
		repos = []domain.RepoRegistration{}
	}
	return jsonResource(req.Params.URI, repos)
}

// handleWorkflowResource returns the stored document of a workflow verbatim.
func (s *Server) handleWorkflowResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractWorkflowID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	raw, err := s.ports.Catalog.GetRaw(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting workflow %d: %w", id, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     raw,
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractWorkflowID extracts the workflow ID from a URI like flowhub://workflows/{id}.
func extractWorkflowID(uri string) (int64, bool) {
	const prefix = uriScheme + "workflows/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
