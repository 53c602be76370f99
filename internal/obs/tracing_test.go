package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracerNoneKeepsPropagation(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{Exporter: "NONE"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	require.False(t, span.SpanContext().IsSampled())
	span.End()

	carrier := propagation.MapCarrier{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), carrier)
	require.True(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestInitTracerRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported tracing exporter")
}

func TestSamplerForClampsRatio(t *testing.T) {
	params := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		Name:          "op",
	}
	for _, ratio := range []float64{0, -1, 2} {
		res := samplerFor(ratio).ShouldSample(params)
		require.Equal(t, sdktrace.RecordAndSample, res.Decision, ratio)
	}
}

func TestServiceResourceDefaults(t *testing.T) {
	res, err := serviceResource(context.Background(), TracingConfig{ServiceVersion: "1.2.3", Environment: "test"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "donate-api", attrs["service.name"])
	require.Equal(t, "1.2.3", attrs["service.version"])
	require.Equal(t, "test", attrs["deployment.environment"])
}
