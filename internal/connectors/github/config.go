package github

import "time"

// DefaultRequestsPerHour is the authenticated GitHub API quota.
const DefaultRequestsPerHour = 5000

// Config holds the connector settings shared by every repository.
type Config struct {
	// Token is a personal access token. Empty means unauthenticated.
	Token string

	// RequestsPerHour throttles API calls. Zero uses DefaultRequestsPerHour.
	RequestsPerHour int

	// BaseURL overrides the API endpoint, for GitHub Enterprise or tests.
	BaseURL string

	// RetryDelay is the pause after a transient failure. Zero uses the default.
	RetryDelay time.Duration

	// RateLimitWait caps the pause after a 403. Zero uses the default.
	RateLimitWait time.Duration
}

func (c Config) requestsPerHour() int {
	if c.RequestsPerHour <= 0 {
		return DefaultRequestsPerHour
	}
	return c.RequestsPerHour
}

func (c Config) retryDelay() time.Duration {
	if c.RetryDelay <= 0 {
		return RetryDelay
	}
	return c.RetryDelay
}

func (c Config) rateLimitWait() time.Duration {
	if c.RateLimitWait <= 0 {
		return RateLimitWait
	}
	return c.RateLimitWait
}
