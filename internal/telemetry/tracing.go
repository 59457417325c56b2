// Package telemetry installs the OpenTelemetry tracer provider used by --trace.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName identifies flowhub in exported spans.
const ServiceName = "flowhub"

// Provider owns the SDK tracer provider while tracing is enabled.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// NewProvider returns a disabled provider when enabled is false, leaving the
// global no-op tracer in place. Otherwise spans are written to w as JSON and
// the provider is installed globally.
func NewProvider(enabled bool, w io.Writer) (*Provider, error) {
	if !enabled {
		return &Provider{}, nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(provider)

	return &Provider{provider: provider}, nil
}

// Enabled reports whether spans are being exported.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
