package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts register and login requests by result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: success | failure
	)

	// authDuration tracks register and login latency, bcrypt included.
	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Authentication duration by endpoint",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"endpoint"},
	)

	// authzCheckDuration tracks bearer token verification.
	authzCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authz_check_duration_seconds",
			Help:    "Authorization check duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	// rejectedTokens counts requests turned away by the middleware.
	rejectedTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejected_tokens_total",
			Help: "Requests rejected by the authorization middleware by reason",
		},
		[]string{"reason"}, // missing | invalid | expired
	)
)

// RecordAuthRequest records a register or login request.
func RecordAuthRequest(endpoint, result string) {
	authRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// RecordAuthDuration records register or login duration.
func RecordAuthDuration(endpoint string, durationSeconds float64) {
	authDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordAuthzCheckDuration records authorization check duration.
func RecordAuthzCheckDuration(durationSeconds float64) {
	authzCheckDuration.Observe(durationSeconds)
}

// RecordRejectedToken records a request rejected for the given reason.
func RecordRejectedToken(reason string) {
	rejectedTokens.WithLabelValues(reason).Inc()
}
