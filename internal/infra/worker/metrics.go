package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_refresh_runs_total",
		Help: "Total number of stats refresh runs by status (success/failure)",
	}, []string{"status"})

	jobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stats_refresh_duration_seconds",
		Help:    "Duration of stats refresh runs in seconds",
		Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 30},
	})

	jobLastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stats_refresh_last_success_timestamp",
		Help: "Unix timestamp of the last successful stats refresh",
	})
)

func recordJobRun(status string, seconds float64) {
	jobRunsTotal.WithLabelValues(status).Inc()
	jobDurationSeconds.Observe(seconds)
	if status == "success" {
		jobLastSuccessTimestamp.SetToCurrentTime()
	}
}
