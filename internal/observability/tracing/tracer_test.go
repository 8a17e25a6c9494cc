package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"wikinotes/internal/handler/http/requestid"
)

func withRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	orig := tracer
	tracer = tp.Tracer(ServiceName)
	t.Cleanup(func() { tracer = orig })
	return exporter
}

func TestStartSpanAndEnd(t *testing.T) {
	exporter := withRecorder(t)

	_, span := StartSpan(context.Background(), "note.Create", attribute.Int64("user_id", 7))
	End(span, nil)

	_, failed := StartSpan(context.Background(), "note.Update")
	End(failed, errors.New("note not found"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "note.Create", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int64("user_id", 7))

	assert.Equal(t, "note.Update", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "note not found", spans[1].Status.Description)
	require.Len(t, spans[1].Events, 1)
}

func TestMiddleware_UsesNormalizedRouteAndRequestID(t *testing.T) {
	exporter := withRecorder(t)

	handler := requestid.Middleware(Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodDelete, "/notes/42", nil)
	req.Header.Set(requestid.RequestIDHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "DELETE /notes/:id", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("http.route", "/notes/:id"))
	assert.Contains(t, spans[0].Attributes, attribute.String("request_id", "req-1"))
}

func TestSetup_InstallsProvider(t *testing.T) {
	orig := otel.GetTracerProvider()
	defer otel.SetTracerProvider(orig)

	shutdown := Setup(1.0)
	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	assert.NoError(t, shutdown(context.Background()))
}
