package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/flowhub/internal/logger"
)

// instrumentationName identifies spans and metrics emitted by the core services.
const instrumentationName = "github.com/custodia-labs/flowhub/internal/core/services"

// tracer returns the services tracer from the global provider.
// Spans are no-ops unless a provider is installed (flowhub --trace).
func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// ingestCounters are the per-item ingestion counters.
type ingestCounters struct {
	imported   metric.Int64Counter
	duplicates metric.Int64Counter
	errors     metric.Int64Counter
}

func newIngestCounters() ingestCounters {
	meter := otel.Meter(instrumentationName)
	return ingestCounters{
		imported:   counter(meter, "flowhub.ingest.imported", "Workflows stored by ingestion"),
		duplicates: counter(meter, "flowhub.ingest.duplicates", "Documents skipped as duplicates"),
		errors:     counter(meter, "flowhub.ingest.errors", "Documents rejected or not fetched"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("metrics: %s unavailable: %v", name, err)
		return noop.Int64Counter{}
	}
	return c
}
