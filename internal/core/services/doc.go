// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on ports and domain types; tracing and metrics go
// through the OpenTelemetry API and are no-ops unless a provider is set.
package services
