package api

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/flowhub/internal/connectors/github"
	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// MaxDocumentBytes bounds a single uploaded workflow document.
const MaxDocumentBytes = 10 << 20

var unsafeFilename = regexp.MustCompile(`[^\w.\- ]+`)

// search handles GET /api/search?q=&category=&node=&min_score=&page=&page_size=&sort=
func (s *Server) search(c echo.Context) error {
	query := domain.SearchQuery{
		Text:     strings.TrimSpace(c.QueryParam("q")),
		Category: c.QueryParam("category"),
		NodeType: c.QueryParam("node"),
		Sort:     domain.ParseSortMode(c.QueryParam("sort")),
	}

	var err error
	if query.MinScore, err = queryInt(c, "min_score"); err != nil {
		return err
	}
	if query.Page, err = queryInt(c, "page"); err != nil {
		return err
	}
	if query.PageSize, err = queryInt(c, "page_size"); err != nil {
		return err
	}

	page, err := s.ports.Catalog.Search(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	if page.Workflows == nil {
		page.Workflows = []domain.Workflow{}
	}
	return c.JSON(http.StatusOK, page)
}

// filters handles GET /api/filters.
func (s *Server) filters(c echo.Context) error {
	ctx := c.Request().Context()

	nodes, err := s.ports.Catalog.ListNodeTypes(ctx)
	if err != nil {
		return httpError(err)
	}
	categories, err := s.ports.Catalog.ListCategories(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{
		"nodes":      orEmpty(nodes),
		"categories": orEmpty(categories),
	})
}

func (s *Server) stats(c echo.Context) error {
	stats, err := s.ports.Catalog.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) verify(c echo.Context) error {
	report, err := s.ports.Catalog.Verify(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"consistent": report.Consistent(),
		"report":     report,
	})
}

func (s *Server) reindex(c echo.Context) error {
	n, err := s.ports.Catalog.RebuildIndex(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"indexed": n})
}

func (s *Server) getWorkflow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	wf, err := s.ports.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, wf)
}

// getWorkflowJSON returns the stored document verbatim as a download.
func (s *Server) getWorkflowJSON(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	wf, err := s.ports.Catalog.Get(ctx, id)
	if err != nil {
		return httpError(err)
	}
	raw, err := s.ports.Catalog.GetRaw(ctx, id)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", downloadName(wf.Name)))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, []byte(raw))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) renameWorkflow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.ports.Catalog.Rename(c.Request().Context(), id, req.Name); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) deleteWorkflow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.ports.Catalog.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// importJSON handles POST /api/import/json. The request body is the workflow
// document itself; ?origin_url= records where it came from.
func (s *Server) importJSON(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, MaxDocumentBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}

	result, err := s.ports.Ingest.IngestOne(c.Request().Context(), domain.RawWorkflow{
		Content:   body,
		OriginURL: c.QueryParam("origin_url"),
	})
	if err != nil {
		return httpError(err)
	}

	status := http.StatusCreated
	if result.Status == domain.IngestStatusDuplicate {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

type importURLRequest struct {
	URL string `json:"url"`
}

// importURL handles POST /api/import/url. Only GitHub URLs are accepted;
// the server's filesystem is not reachable over HTTP.
func (s *Server) importURL(c echo.Context) error {
	var req importURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	url := strings.TrimSpace(req.URL)
	if !github.IsGitHubURL(url) {
		return httpError(fmt.Errorf("%w: only GitHub URLs can be imported over HTTP", domain.ErrUnsupportedSource))
	}

	result, err := s.ports.Ingest.Import(c.Request().Context(), url, domain.BatchOptions{})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) applyEnrichment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var enrichment domain.Enrichment
	if err := c.Bind(&enrichment); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.ports.Enrichment.ApplyEnrichment(c.Request().Context(), id, enrichment); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) pendingEnrichment(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	workflows, err := s.ports.Enrichment.ListUnenriched(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	if workflows == nil {
		workflows = []domain.Workflow{}
	}
	return c.JSON(http.StatusOK, workflows)
}

func downloadName(name string) string {
	name = strings.TrimSpace(unsafeFilename.ReplaceAllString(name, "_"))
	if name == "" {
		name = "workflow"
	}
	return name + ".json"
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
