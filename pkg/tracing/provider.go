package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitProvider configures the global tracer provider and registers the
// service tracer. The returned shutdown function flushes pending spans.
func InitProvider(serviceName string) (func(context.Context) error, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	otel.SetTracerProvider(tp)
	SetTracer(tp.Tracer(serviceName))

	return tp.Shutdown, nil
}
