package driven

import (
	"context"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

// Connector fetches raw workflow documents from an origin.
// Fetching happens entirely outside storage transactions.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// OriginGroup returns the group stored on every document from this origin.
	// Empty for origins that are not repositories.
	OriginGroup() string

	// Validate checks the origin is reachable before fetching.
	Validate(ctx context.Context) error

	// FullSync streams every workflow document from the origin.
	// Per-document fetch failures are sent on the error channel and do not
	// stop the stream. A failure to list the origin is sent wrapping
	// domain.ErrListingFailed and ends the stream. Both channels are closed
	// when the sync ends.
	FullSync(ctx context.Context) (<-chan domain.RawWorkflow, <-chan error)

	// Close releases resources.
	Close() error
}

// Watcher is implemented by connectors that can push documents as they change.
type Watcher interface {
	// Watch streams documents created or modified after the call.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawWorkflow, error)
}

// ConnectorFactory resolves an origin string (local path or URL) to a connector.
type ConnectorFactory interface {
	// Create returns a Connector for origin.
	// Returns domain.ErrUnsupportedSource if no connector understands it.
	Create(ctx context.Context, origin string) (Connector, error)
}

// GroupResolver maps an origin to the origin group its documents carry.
type GroupResolver interface {
	// Group returns the canonical group for origin.
	// Returns domain.ErrUnsupportedSource for origins that form no group,
	// such as local paths and single files.
	Group(origin string) (string, error)
}
