// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Parses raw workflow documents into validated metadata
//   - WorkflowStore: Record persistence, membership tables and search index
//   - RepoStore: Repository registration persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ConnectorFactory: Resolves origins (directories, GitHub URLs) to connectors.
//     Without it, only documents handed over directly can be ingested.
//   - FacetCache: Caches the known node-type and category lists.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
