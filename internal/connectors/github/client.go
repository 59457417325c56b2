package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/flowhub/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxAttempts is the number of tries per request.
	MaxAttempts = 3

	// RetryDelay is the pause between attempts after a transient error.
	RetryDelay = 2 * time.Second

	// RateLimitWait is the longest pause after a 403 before retrying.
	RateLimitWait = 60 * time.Second

	// defaultBranch is used when the repository metadata cannot be read.
	defaultBranch = "main"
)

// Client wraps the go-github client with rate limiting and retries.
type Client struct {
	gh            *gh.Client
	rateLimiter   *RateLimiter
	retryDelay    time.Duration
	rateLimitWait time.Duration
}

// NewClient creates a client from cfg. An empty token gives an
// unauthenticated client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var hc *http.Client
	if cfg.Token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
		hc.Timeout = DefaultTimeout
	} else {
		hc = &http.Client{Timeout: DefaultTimeout}
	}

	client := gh.NewClient(hc)
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github: parse base URL: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		client.BaseURL = base
	}

	return &Client{
		gh:            client,
		rateLimiter:   NewRateLimiter(cfg.requestsPerHour()),
		retryDelay:    cfg.retryDelay(),
		rateLimitWait: cfg.rateLimitWait(),
	}, nil
}

// DefaultBranch returns the repository's default branch.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var repository *gh.Repository
	err := c.do(ctx, "get repo", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		repository, resp, err = c.gh.Repositories.Get(ctx, owner, repo)
		return resp, err
	})
	if err != nil {
		return "", err
	}
	if b := repository.GetDefaultBranch(); b != "" {
		return b, nil
	}
	return defaultBranch, nil
}

// GetTree fetches the entire tree for a repository recursively.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error) {
	var tree *gh.Tree
	err := c.do(ctx, "get tree", func() (*gh.Response, error) {
		var resp *gh.Response
		var err error
		tree, resp, err = c.gh.Git.GetTree(ctx, owner, repo, ref, true)
		return resp, err
	})
	return tree, err
}

// GetBlob fetches a blob by SHA and decodes its content.
func (c *Client) GetBlob(ctx context.Context, owner, repo, sha string) ([]byte, error) {
	var content []byte
	err := c.do(ctx, "get blob", func() (*gh.Response, error) {
		raw, resp, err := c.gh.Git.GetBlobRaw(ctx, owner, repo, sha)
		content = raw
		return resp, err
	})
	return content, err
}

// GetFile downloads one file at ref.
func (c *Client) GetFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	var content []byte
	err := c.do(ctx, "download contents", func() (*gh.Response, error) {
		opts := &gh.RepositoryContentGetOptions{Ref: ref}
		rc, resp, err := c.gh.Repositories.DownloadContents(ctx, owner, repo, path, opts)
		if err != nil {
			return resp, err
		}
		defer rc.Close()
		content, err = io.ReadAll(rc)
		return resp, err
	})
	return content, err
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// do runs fn up to MaxAttempts times. Rate-limit and 403 responses wait up
// to rateLimitWait; other transient failures wait retryDelay.
func (c *Client) do(ctx context.Context, operation string, fn func() (*gh.Response, error)) error {
	for attempt := 1; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		resp, err := fn()
		c.updateRateLimitFromResponse(resp)
		if err == nil {
			return nil
		}

		err = c.wrapError(err, operation)
		if attempt >= MaxAttempts || !isTransient(err) || ctx.Err() != nil {
			return err
		}

		delay := c.retryDelay
		if IsRateLimited(err) || IsForbidden(err) {
			delay = c.rateLimitWait
			if reset := c.rateLimiter.ResetTime(); time.Now().Before(reset) && time.Until(reset) < delay {
				delay = time.Until(reset)
			}
			logger.Warn("github: rate limited during %s, waiting %s", operation, delay.Round(time.Second))
		} else {
			logger.Debug("github: attempt %d/%d of %s failed: %v", attempt, MaxAttempts, operation, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now().Add(c.rateLimitWait)
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt, Limit: c.rateLimiter.Limit()}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
