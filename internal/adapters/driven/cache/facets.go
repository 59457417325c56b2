// Package cache provides in-memory caches for driven ports.
package cache

import (
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/logger"
)

const (
	// DefaultExpiration bounds how long a facet list is served after the
	// last mutation seen by this process.
	DefaultExpiration = 10 * time.Minute

	// DefaultCleanupInterval is how often expired lists are purged.
	DefaultCleanupInterval = 30 * time.Minute
)

// Ensure FacetCache implements the interface.
var _ driven.FacetCache = (*FacetCache)(nil)

// FacetCache keeps the node-type and category lists in memory.
type FacetCache struct {
	cache *gocache.Cache
}

// NewFacetCache creates a facet cache. Non-positive durations use the defaults.
func NewFacetCache(expiration, cleanup time.Duration) *FacetCache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &FacetCache{cache: gocache.New(expiration, cleanup)}
}

// Get returns a copy of the cached list for key.
func (c *FacetCache) Get(key string) ([]string, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	values, ok := value.([]string)
	if !ok {
		logger.Warn("facet cache: unexpected value type for %s", key)
		c.cache.Delete(key)
		return nil, false
	}

	logger.Debug("facet cache hit: %s", key)
	return slices.Clone(values), true
}

// Set stores a copy of values under key with the default expiration.
func (c *FacetCache) Set(key string, values []string) {
	if values == nil {
		values = []string{}
	}
	c.cache.Set(key, slices.Clone(values), gocache.DefaultExpiration)
}

// Invalidate drops every cached list.
func (c *FacetCache) Invalidate() {
	c.cache.Flush()
}
