package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics holds the Prometheus collectors for the HTTP transport.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers the HTTP metrics on the registry.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gearlog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route pattern and status.",
		}, []string{"method", "pattern", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gearlog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Instrument returns middleware that records request counts and latencies.
// The route pattern registered on the mux is used as the label, not the raw
// URL path, to keep cardinality bounded.
func (m *HTTPMetrics) Instrument() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			m.requests.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
			m.duration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
