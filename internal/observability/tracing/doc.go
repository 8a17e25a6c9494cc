// Package tracing provides OpenTelemetry tracing integration.
//
// Setup installs the SDK tracer provider, Middleware opens a server span per
// HTTP request, and StartSpan/End wrap use-case operations.
//
// Example usage:
//
//	import "wikinotes/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.Setup(1.0)
//	    defer shutdown(context.Background())
//	}
package tracing
