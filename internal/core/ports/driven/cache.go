package driven

// FacetCache caches the known node-type and category lists between mutations.
type FacetCache interface {
	// Get returns the cached list for key.
	Get(key string) ([]string, bool)

	// Set stores the list for key.
	Set(key string, values []string)

	// Invalidate drops every cached list.
	Invalidate()
}
