// Package telemetry wires OpenTelemetry tracing for reconcile cycles.
//
// When no trace file is configured the global no-op provider stays in place and
// spans cost nothing. With a file, spans are written as JSON by the stdout exporter.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies this program in span resources
const ServiceName = "procballs"

// InstrumentationName is the tracer name used by the engine
const InstrumentationName = "github.com/lixenwraith/procballs/engine"

// RunID is unique per process start; it tags spans and the log
var RunID = uuid.NewString()

// Shutdown flushes and releases the tracer provider
type Shutdown func(ctx context.Context) error

// Init installs a tracer provider exporting to outputFile
// An empty outputFile leaves the no-op provider in place
func Init(version, outputFile string) (Shutdown, error) {
	if outputFile == "" {
		return func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	tp := newProvider(version, exporter)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}, nil
}

func newProvider(version string, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
		attribute.String("service.instance.id", RunID),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
}

// Tracer returns the engine tracer from the current global provider
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
