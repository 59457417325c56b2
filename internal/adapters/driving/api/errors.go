package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// httpError maps a service error to an HTTP error. Caller mistakes keep
// their message; infrastructure failures are logged and hidden.
func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrSyncInProgress):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case domain.IsClientError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrListingFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		logger.Error("HTTP request failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid id %q", c.Param("id")))
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
	}
	return n, nil
}
