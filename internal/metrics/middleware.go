package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedPath labels requests no route pattern matched (404/405).
const unmatchedPath = "unmatched"

// HTTP Prometheus metrics, registered by RegisterRouterMetrics.
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency by route pattern",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by route pattern and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "API requests currently being served",
		},
	)
)

// Middleware records latency, count and in-flight requests per chi route
// pattern. Requests to skip (typically the scrape endpoint) pass through
// unrecorded.
func Middleware(skip ...string) func(next http.Handler) http.Handler {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			HTTPInFlight.Inc()
			defer HTTPInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			labels := []string{r.Method, routePattern(r), strconv.Itoa(status)}
			HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedPath
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedPath
}
