// Package domain defines the core business entities for flowhub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Workflow: A stored automation-workflow record with derived metadata
//   - RawWorkflow: Opaque document bytes plus an origin descriptor
//   - ParsedWorkflow: Normalised metadata ready for insertion
//   - RepoRegistration: Bookkeeping for a remote origin group
//   - SearchQuery / SearchPage: Faceted catalogue reads
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
