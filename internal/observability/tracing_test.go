package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "foodgram-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_RejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ServiceName: "foodgram-test", Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = prev })

	_, span := StartSpan(context.Background(), "composer.create")
	EndSpan(span, errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "composer.create", ended[0].Name())
	assert.Equal(t, otelcodes.Error, ended[0].Status().Code)
}
