package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/observability/logging"
)

var errRateLimited = errors.New("too many requests, retry later")

var (
	rateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_decisions_total",
			Help: "Rate limiter decisions by limiter and result",
		},
		[]string{"limiter", "result"}, // result: allowed | denied
	)

	rateLimitClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_tracked_clients",
			Help: "Number of client IPs with live token buckets",
		},
		[]string{"limiter"},
	)
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	name      string
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	extractor IPExtractor

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

// NewIPRateLimiter allows each IP requestsPerSecond sustained requests with
// bursts of up to burst. Buckets idle for longer than idleTTL are dropped by
// Cleanup.
func NewIPRateLimiter(name string, requestsPerSecond float64, burst int, idleTTL time.Duration, extractor IPExtractor) *IPRateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	return &IPRateLimiter{
		name:      name,
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		idleTTL:   idleTTL,
		extractor: extractor,
		clients:   make(map[string]*client),
		now:       time.Now,
	}
}

// Allow takes a token from ip's bucket. When none is left it returns false
// and the wait until the next token.
func (l *IPRateLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	now := l.now()
	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware answers 429 with a Retry-After header once an IP's bucket is
// empty.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, err := l.extractor.ExtractIP(r)
			if err != nil {
				ip = r.RemoteAddr
			}

			ok, wait := l.Allow(ip)
			if !ok {
				rateLimitDecisions.WithLabelValues(l.name, "denied").Inc()
				logging.WithRequestID(r.Context(), logging.FromContext(r.Context())).Warn("rate limit exceeded",
					slog.String("limiter", l.name),
					slog.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
				respond.SafeError(w, r, http.StatusTooManyRequests, errRateLimited)
				return
			}
			rateLimitDecisions.WithLabelValues(l.name, "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(wait time.Duration) int {
	s := int(math.Ceil(wait.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// CleanupExpired drops buckets idle for longer than the idle TTL and returns
// how many were removed.
func (l *IPRateLimiter) CleanupExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			removed++
		}
	}
	rateLimitClients.WithLabelValues(l.name).Set(float64(len(l.clients)))
	return removed
}

// Len returns the number of tracked IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Cleanup runs CleanupExpired every interval until ctx is canceled.
func (l *IPRateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started",
		slog.String("limiter", l.name),
		slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped", slog.String("limiter", l.name))
			return
		case <-ticker.C:
			if n := l.CleanupExpired(); n > 0 {
				slog.Debug("rate limit cleanup completed",
					slog.String("limiter", l.name),
					slog.Int("removed", n))
			}
		}
	}
}
