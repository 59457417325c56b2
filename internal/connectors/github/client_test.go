package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

func TestRateLimiter(t *testing.T) {
	t.Run("creates rate limiter with quota", func(t *testing.T) {
		rl := NewRateLimiter(0)
		assert.Equal(t, DefaultRequestsPerHour, rl.Limit())
		assert.Equal(t, DefaultRequestsPerHour, rl.Remaining())
	})

	t.Run("updates from response headers", func(t *testing.T) {
		rl := NewRateLimiter(5000)
		reset := time.Now().Add(time.Hour).Unix()

		rl.UpdateFromResponse(&http.Response{Header: http.Header{
			"X-Ratelimit-Remaining": []string{"100"},
			"X-Ratelimit-Limit":     []string{"60"},
			"X-Ratelimit-Reset":     []string{strconv.FormatInt(reset, 10)},
		}})

		assert.Equal(t, 100, rl.Remaining())
		assert.Equal(t, 60, rl.Limit())
		assert.Equal(t, reset, rl.ResetTime().Unix())
	})

	t.Run("ignores nil response", func(t *testing.T) {
		rl := NewRateLimiter(5000)
		rl.UpdateFromResponse(nil)
		assert.Equal(t, 5000, rl.Remaining())
	})

	t.Run("wait respects context cancellation", func(t *testing.T) {
		rl := NewRateLimiter(5000)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, rl.Wait(ctx))
	})

	t.Run("waits for reset when quota is spent", func(t *testing.T) {
		rl := NewRateLimiter(3_600_000)
		rl.UpdateFromResponse(&http.Response{Header: http.Header{
			"X-Ratelimit-Remaining": []string{"0"},
			"X-Ratelimit-Reset":     []string{strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)},
		}})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
	})
}

func TestClient_WrapError(t *testing.T) {
	client, err := NewClient(context.Background(), Config{})
	require.NoError(t, err)

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, client.wrapError(nil, "test operation"))
	})

	t.Run("wraps github ErrorResponse as APIError", func(t *testing.T) {
		testURL, _ := url.Parse("https://api.github.com/repos/test/repo")
		ghErr := &gh.ErrorResponse{
			Response: &http.Response{StatusCode: 404, Request: &http.Request{URL: testURL}},
			Message:  "Not Found",
		}

		err := client.wrapError(ghErr, "get repo")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, "Not Found", apiErr.Message)
		assert.Equal(t, testURL.String(), apiErr.URL)
		assert.True(t, IsNotFound(err))
	})

	t.Run("wraps github RateLimitError", func(t *testing.T) {
		reset := time.Now().Add(time.Hour)
		ghErr := &gh.RateLimitError{Rate: gh.Rate{Limit: 5000, Remaining: 0, Reset: gh.Timestamp{Time: reset}}}

		err := client.wrapError(ghErr, "get tree")

		var rateLimitErr *RateLimitError
		require.True(t, errors.As(err, &rateLimitErr))
		assert.Equal(t, 5000, rateLimitErr.Limit)
		assert.Equal(t, 0, rateLimitErr.Remaining)
		assert.True(t, rateLimitErr.ResetAt.Equal(reset))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("wraps abuse rate limit", func(t *testing.T) {
		wait := 5 * time.Second
		err := client.wrapError(&gh.AbuseRateLimitError{RetryAfter: &wait}, "get blob")
		assert.True(t, IsRateLimited(err))
	})

	t.Run("wraps generic error with operation", func(t *testing.T) {
		err := client.wrapError(errors.New("network error"), "fetch data")
		assert.Contains(t, err.Error(), "fetch data")
		assert.Contains(t, err.Error(), "network error")
	})
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		forbidden bool
		transient bool
	}{
		{"404", &APIError{StatusCode: 404}, true, false, false},
		{"403", &APIError{StatusCode: 403}, false, true, true},
		{"500", &APIError{StatusCode: 502}, false, false, true},
		{"422", &APIError{StatusCode: 422}, false, false, false},
		{"rate limit", &RateLimitError{}, false, false, true},
		{"repo not found", ErrRepoNotFound, true, false, false},
		{"invalid url", ErrInvalidURL, false, false, false},
		{"network", errors.New("connection reset"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.forbidden, IsForbidden(tt.err))
			assert.Equal(t, tt.transient, isTransient(tt.err))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 500, Message: "boom", URL: "https://api.github.com/x"}
	assert.Equal(t, "github: API error 500: boom (URL: https://api.github.com/x)", err.Error())
}

func TestRateLimitError_Error(t *testing.T) {
	reset := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := &RateLimitError{ResetAt: reset}
	assert.Equal(t, "github: rate limit exceeded, resets at 2025-01-02T03:04:05Z", err.Error())
}
