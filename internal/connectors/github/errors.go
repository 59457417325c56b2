package github

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// GitHub-specific errors.
var (
	// ErrInvalidURL indicates a GitHub URL that names no repository or file.
	ErrInvalidURL = fmt.Errorf("github: %w: unrecognised URL", domain.ErrInvalidInput)

	// ErrRepoNotFound indicates the repository was not found or is not accessible.
	ErrRepoNotFound = fmt.Errorf("github: repository %w", domain.ErrNotFound)
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return errors.Is(err, ErrRepoNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 403
	}
	return false
}

// isTransient reports whether another attempt may succeed.
func isTransient(err error) bool {
	if IsRateLimited(err) || IsForbidden(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return !errors.Is(err, ErrInvalidURL) && !errors.Is(err, domain.ErrNotFound)
}
