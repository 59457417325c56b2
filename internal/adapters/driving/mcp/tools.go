package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// SearchInput is the input schema for the search_workflows tool.
type SearchInput struct {
	Query    string `json:"query,omitempty" jsonschema:"free text matched against names, descriptions, nodes, categories and enrichment"`
	Category string `json:"category,omitempty" jsonschema:"only return workflows in this category"`
	NodeType string `json:"node_type,omitempty" jsonschema:"only return workflows using this node type (short name)"`
	MinScore int    `json:"min_score,omitempty" jsonschema:"minimum usefulness score (0-10)"`
	Sort     string `json:"sort,omitempty" jsonschema:"recent, usefulness, complexity_asc, complexity_desc or nodes"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"results per page (default 24, max 100)"`
}

// SearchOutput is the output schema for the search_workflows tool.
type SearchOutput struct {
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Results    []WorkflowSummary `json:"results"`
}

// WorkflowSummary is the compact form of a workflow returned by search.
type WorkflowSummary struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Nodes       []string `json:"nodes"`
	TriggerType string   `json:"trigger_type"`
	Usefulness  int      `json:"usefulness"`
	Complexity  int      `json:"complexity"`
	OriginURL   string   `json:"origin_url,omitempty"`
}

// GetInput is the input schema for the get_workflow tool.
type GetInput struct {
	ID         int64 `json:"id" jsonschema:"workflow id"`
	IncludeRaw bool  `json:"include_raw,omitempty" jsonschema:"also return the stored workflow JSON"`
}

// GetOutput is the output schema for the get_workflow tool.
type GetOutput struct {
	Workflow WorkflowDetail `json:"workflow"`
	Raw      string         `json:"raw,omitempty"`
}

// WorkflowDetail is the full metadata of one workflow. Timestamps are RFC 3339.
type WorkflowDetail struct {
	ID                  int64    `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Categories          []string `json:"categories"`
	Nodes               []string `json:"nodes"`
	NodeCount           int      `json:"node_count"`
	TriggerType         string   `json:"trigger_type"`
	OriginURL           string   `json:"origin_url,omitempty"`
	OriginGroup         string   `json:"origin_group,omitempty"`
	Fingerprint         string   `json:"fingerprint"`
	Usefulness          int      `json:"usefulness"`
	Universality        int      `json:"universality"`
	Complexity          int      `json:"complexity"`
	Scalability         int      `json:"scalability"`
	Summary             string   `json:"summary,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	UseCases            []string `json:"use_cases,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty"`
	IntegrationsSummary string   `json:"integrations_summary,omitempty"`
	DifficultyLevel     string   `json:"difficulty_level,omitempty"`
	AnalyzedAt          string   `json:"analyzed_at,omitempty"`
	CreatedAt           string   `json:"created_at"`
}

// ListInput is the (empty) input schema for the listing tools.
type ListInput struct{}

// ListOutput is the output schema for list_nodes and list_categories.
type ListOutput struct {
	Values []string `json:"values"`
	Count  int      `json:"count"`
}

// ImportInput is the input schema for the import_workflow tool.
type ImportInput struct {
	Document  string `json:"document" jsonschema:"the workflow JSON document"`
	OriginURL string `json:"origin_url,omitempty" jsonschema:"where the document came from"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_workflows",
		Description: "Search the workflow catalogue with optional category, node and score filters",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_workflow",
		Description: "Get a workflow's metadata and enrichment by id",
	}, s.handleGetWorkflow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_nodes",
		Description: "List every node type used by stored workflows",
	}, s.handleListNodes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List every workflow category",
	}, s.handleListCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "catalog_stats",
		Description: "Summarise the catalogue: workflows, repositories, nodes and enrichment",
	}, s.handleStats)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "import_workflow",
			Description: "Add a workflow JSON document to the catalogue",
		}, s.handleImport)
	}
}

// handleSearch handles the search_workflows tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.SearchQuery{
		Text:     strings.TrimSpace(input.Query),
		Category: input.Category,
		NodeType: input.NodeType,
		MinScore: input.MinScore,
		Page:     input.Page,
		PageSize: input.PageSize,
		Sort:     domain.ParseSortMode(input.Sort),
	}

	page, err := s.ports.Catalog.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, toolError("search_workflows", err)
	}

	output := SearchOutput{
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Results:    make([]WorkflowSummary, len(page.Workflows)),
	}
	for i := range page.Workflows {
		output.Results[i] = summarise(&page.Workflows[i])
	}

	return nil, output, nil
}

// handleGetWorkflow handles the get_workflow tool invocation.
func (s *Server) handleGetWorkflow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, GetOutput, error) {
	if input.ID <= 0 {
		return nil, GetOutput{}, fmt.Errorf("%w: id must be positive", domain.ErrInvalidInput)
	}

	wf, err := s.ports.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, GetOutput{}, toolError("get_workflow", err)
	}

	output := GetOutput{Workflow: detail(wf)}
	if input.IncludeRaw {
		raw, err := s.ports.Catalog.GetRaw(ctx, input.ID)
		if err != nil {
			return nil, GetOutput{}, toolError("get_workflow", err)
		}
		output.Raw = raw
	}

	return nil, output, nil
}

func (s *Server) handleListNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	values, err := s.ports.Catalog.ListNodeTypes(ctx)
	if err != nil {
		return nil, ListOutput{}, toolError("list_nodes", err)
	}
	return nil, listOutput(values), nil
}

func (s *Server) handleListCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	values, err := s.ports.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, ListOutput{}, toolError("list_categories", err)
	}
	return nil, listOutput(values), nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, domain.CatalogStats, error) {
	stats, err := s.ports.Catalog.Stats(ctx)
	if err != nil {
		return nil, domain.CatalogStats{}, toolError("catalog_stats", err)
	}
	return nil, *stats, nil
}

// handleImport handles the import_workflow tool invocation.
func (s *Server) handleImport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImportInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	if s.ports.Ingest == nil {
		return nil, domain.IngestResult{}, errMissingIngest
	}

	result, err := s.ports.Ingest.IngestOne(ctx, domain.RawWorkflow{
		Content:   []byte(input.Document),
		OriginURL: input.OriginURL,
	})
	if err != nil {
		return nil, domain.IngestResult{}, toolError("import_workflow", err)
	}
	return nil, *result, nil
}

func summarise(wf *domain.Workflow) WorkflowSummary {
	return WorkflowSummary{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		Categories:  orEmpty(wf.Categories),
		Nodes:       orEmpty(wf.Nodes),
		TriggerType: wf.TriggerType,
		Usefulness:  wf.Enrichment.Usefulness,
		Complexity:  wf.Enrichment.Complexity,
		OriginURL:   wf.OriginURL,
	}
}

func detail(wf *domain.Workflow) WorkflowDetail {
	e := wf.Enrichment
	d := WorkflowDetail{
		ID:                  wf.ID,
		Name:                wf.Name,
		Description:         wf.Description,
		Categories:          orEmpty(wf.Categories),
		Nodes:               orEmpty(wf.Nodes),
		NodeCount:           wf.NodeCount,
		TriggerType:         wf.TriggerType,
		OriginURL:           wf.OriginURL,
		OriginGroup:         wf.OriginGroup,
		Fingerprint:         wf.Fingerprint,
		Usefulness:          e.Usefulness,
		Universality:        e.Universality,
		Complexity:          e.Complexity,
		Scalability:         e.Scalability,
		Summary:             e.Summary,
		Tags:                e.Tags,
		UseCases:            e.UseCases,
		TargetAudience:      e.TargetAudience,
		IntegrationsSummary: e.IntegrationsSummary,
		DifficultyLevel:     e.DifficultyLevel,
		CreatedAt:           wf.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !e.AnalyzedAt.IsZero() {
		d.AnalyzedAt = e.AnalyzedAt.UTC().Format(time.RFC3339)
	}
	return d
}

func listOutput(values []string) ListOutput {
	values = orEmpty(values)
	return ListOutput{Values: values, Count: len(values)}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
