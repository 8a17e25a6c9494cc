package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func serve(t *testing.T, status int, req *http.Request) (*httptest.ResponseRecorder, tracetest.SpanStub) {
	t.Helper()
	exporter := withRecorder(t)
	rec := httptest.NewRecorder()
	Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})).ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	return rec, spans[0]
}

func hasErrorAttr(span tracetest.SpanStub) bool {
	for _, kv := range span.Attributes {
		if kv.Key == "error" {
			return kv.Value.AsBool()
		}
	}
	return false
}

func TestMiddleware_RecordsRequest(t *testing.T) {
	rec, span := serve(t, http.StatusOK, httptest.NewRequest(http.MethodGet, "/articles/17?page=2", nil))

	assert.Equal(t, "GET /articles/:id", span.Name)
	assert.Contains(t, span.Attributes, attribute.String("http.method", http.MethodGet))
	assert.Contains(t, span.Attributes, attribute.String("http.path", "/articles/17"))
	assert.Contains(t, span.Attributes, attribute.Int("http.status_code", http.StatusOK))

	traceID := rec.Header().Get("X-Trace-Id")
	assert.Len(t, traceID, 32)
	assert.Equal(t, span.SpanContext.TraceID().String(), traceID)
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	orig := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(orig) })

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	_, span := serve(t, http.StatusOK, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent.SpanID().String())
}

func TestMiddleware_ErrorAttribute(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: http.StatusCreated, want: false},
		{status: http.StatusNotFound, want: false},
		{status: http.StatusBadGateway, want: true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			_, span := serve(t, tt.status, httptest.NewRequest(http.MethodPost, "/notes", nil))
			assert.Equal(t, tt.want, hasErrorAttr(span))
		})
	}
}
