package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sizeBuckets span 100 B to 1 GB.
var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)

// HTTP server. Paths are normalized route templates.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_size_bytes",
		Help:    "Declared request body size.",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Response body size before compression.",
		Buckets: sizeBuckets,
	}, []string{"method", "path"})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_active_connections",
		Help: "Requests currently being served.",
	})
)

// Record totals, set by the stats worker.
var (
	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "users_total",
		Help: "Registered users.",
	})
	ArticlesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "articles_total",
		Help: "Stored articles.",
	})
	NotesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notes_total",
		Help: "Stored notes.",
	})
	FavoritesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "favorites_total",
		Help: "Stored favorites.",
	})
	StatsRefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stats_refresh_errors_total",
		Help: "Record count refreshes that failed.",
	})
)

// Business events.
var (
	// result is success or rejected.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Registration attempts by result.",
	}, []string{"result"})

	// result is success or failure.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "user_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	// operation is create, update or delete.
	NoteOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "note_operations_total",
		Help: "Note writes by operation.",
	}, []string{"operation"})

	// operation is add or remove.
	FavoriteOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "favorite_operations_total",
		Help: "Favorite changes by operation.",
	}, []string{"operation"})

	ArticleImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "article_imports_total",
		Help: "Article imports by result.",
	}, []string{"result"})

	ArticleImportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "article_import_duration_seconds",
		Help:    "Time to fetch and extract an article page, retries included.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
	})

	ArticleImportSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "article_import_size_bytes",
		Help:    "Size of fetched article pages.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

// Database.
var (
	// operation is query, exec or begin.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database call latency by operation.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"operation"})

	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_active",
		Help: "Pool connections in use.",
	})

	DBConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_connections_idle",
		Help: "Idle pool connections.",
	})
)

// RecordHTTPRequest records one served request. Zero sizes are not observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
