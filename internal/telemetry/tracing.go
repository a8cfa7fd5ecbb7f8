package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation scope used by all appgate spans.
const TracerName = "github.com/Sentinel-Gate/appgate"

// Tracing owns the tracer provider. The provider is passed to components
// explicitly; nothing is installed globally.
type Tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracing returns a tracer provider that writes spans to w when enabled
// and a no-op provider otherwise.
func NewTracing(enabled bool, w io.Writer) (*Tracing, error) {
	if !enabled {
		return &Tracing{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return &Tracing{provider: tp, shutdown: tp.Shutdown}, nil
}

// Tracer returns the appgate tracer.
func (t *Tracing) Tracer() trace.Tracer {
	return t.provider.Tracer(TracerName)
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}

// NoopTracer is used by components constructed without a tracer.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(TracerName)
}
