package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidWorkflow indicates a document that cannot be parsed as a workflow.
	// It always matches ErrInvalidInput via errors.Is.
	ErrInvalidWorkflow = fmt.Errorf("%w: invalid workflow document", ErrInvalidInput)

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedSource indicates an origin URL no connector understands.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSyncInProgress indicates a repository sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSearchUnavailable indicates the search index is not configured.
	ErrSearchUnavailable = errors.New("search index unavailable")

	// ErrRepoDisabled indicates a sync was requested for a disabled registration.
	ErrRepoDisabled = errors.New("repository is disabled")

	// Connector Errors.

	// ErrListingFailed indicates the origin's document list could not be
	// read. Unlike a single document failure it aborts the whole import.
	ErrListingFailed = errors.New("listing origin failed")

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IsClientError reports whether err is caused by the caller rather than
// the infrastructure. Driving adapters map these to 4xx-style responses.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrUnsupportedSource) ||
		errors.Is(err, ErrRepoDisabled)
}
