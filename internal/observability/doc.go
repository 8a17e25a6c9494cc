// Package observability groups the logging, metrics and tracing
// infrastructure of the service.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracer setup and HTTP middleware
//
// Example usage:
//
//	import (
//	    "wikinotes/internal/observability/logging"
//	    "wikinotes/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.New(logging.Options{Level: "info", Format: "json"})
//	    logger.Info("application started")
//
//	    metrics.RecordTotals(1, 12, 3, 4)
//	}
package observability
