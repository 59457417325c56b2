package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

type registerRepoRequest struct {
	URL string `json:"url"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type syncStatusResponse struct {
	RepoID     int64 `json:"repo_id"`
	Running    bool  `json:"running"`
	Imported   int   `json:"imported"`
	Duplicates int   `json:"duplicates"`
	Errors     int   `json:"errors"`
}

func (s *Server) listRepos(c echo.Context) error {
	repos, err := s.ports.Repos.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if repos == nil {
		repos = []domain.RepoRegistration{}
	}
	return c.JSON(http.StatusOK, repos)
}

func (s *Server) registerRepo(c echo.Context) error {
	var req registerRepoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	repo, err := s.ports.Repos.Register(c.Request().Context(), req.URL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, repo)
}

func (s *Server) setRepoEnabled(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req setEnabledRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Enabled == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "enabled is required")
	}
	if err := s.ports.Repos.SetEnabled(c.Request().Context(), id, *req.Enabled); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

func (s *Server) deleteRepo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	removed, err := s.ports.Repos.Delete(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"removed_workflows": removed})
}

func (s *Server) syncRepo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	result, err := s.ports.Repos.Sync(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// syncAllRepos returns per-repository results; a failure of one repository
// is reported alongside the results of the others.
func (s *Server) syncAllRepos(c echo.Context) error {
	results, err := s.ports.Repos.SyncAll(c.Request().Context())
	if results == nil && err != nil {
		return httpError(err)
	}
	body := map[string]any{"results": results}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) repoStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	status, err := s.ports.Repos.Status(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, syncStatusResponse{
		RepoID:     status.RepoID,
		Running:    status.Running,
		Imported:   status.Imported,
		Duplicates: status.Duplicates,
		Errors:     status.Errors,
	})
}
