package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Namespace prefixes every semrouter metric.
const Namespace = "semrouter"

// Router Prometheus metrics.
var (
	RoutesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "routes_total",
			Help:      "Routing decisions by selected route and method",
		},
		[]string{"route", "method"},
	)

	RouteConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "route_confidence",
			Help:      "Confidence of routing decisions",
			Buckets:   []float64{0.1, 0.2, 0.4, 0.6, 0.8, 1},
		},
		[]string{"method"},
	)

	RouteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "route_duration_seconds",
			Help:      "End-to-end routing latency including persistence",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	IndexLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "index_lookups_total",
			Help:      "Route index lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	PersistErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "persist_errors_total",
			Help:      "Failed statistics or history writes",
		},
		[]string{"op"}, // "increment" / "history"
	)

	EventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_dropped_total",
			Help:      "Route events dropped because the publish buffer was full",
		},
	)
)

var routerOnce sync.Once

// RegisterRouterMetrics registers router and HTTP metrics with the default registry. Safe to call repeatedly.
func RegisterRouterMetrics() {
	routerOnce.Do(func() {
		prometheus.MustRegister(
			RoutesTotal,
			RouteConfidence,
			RouteDuration,
			IndexLookupsTotal,
			PersistErrorsTotal,
			EventsDroppedTotal,
			HTTPRequestDuration,
			HTTPRequestsTotal,
			HTTPInFlight,
		)
	})
}

var selectionsDesc = prometheus.NewDesc(
	prometheus.BuildFQName(Namespace, "", "route_selections"),
	"Persisted selection count per route, read from the store on scrape",
	[]string{"route"},
	nil,
)

// CounterSource reads persisted per-route counters.
type CounterSource interface {
	Counts(ctx context.Context) (map[string]int64, error)
}

// SelectionsCollector exports persisted route counters on each scrape, so
// every replica sharing the store reports the same totals.
type SelectionsCollector struct {
	source  CounterSource
	timeout time.Duration
	logger  *zap.Logger
}

// NewSelectionsCollector creates the collector. timeout bounds each scrape read.
func NewSelectionsCollector(source CounterSource, timeout time.Duration, logger *zap.Logger) *SelectionsCollector {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &SelectionsCollector{source: source, timeout: timeout, logger: logger}
}

// Describe sends the metric descriptor to the channel.
func (c *SelectionsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- selectionsDesc
}

// Collect reads counters from the store and emits them as counters.
func (c *SelectionsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.source.Counts(ctx)
	if err != nil {
		c.logger.Warn("Failed to collect route selection metrics", zap.Error(err))
		return
	}
	for name, n := range counts {
		ch <- prometheus.MustNewConstMetric(selectionsDesc, prometheus.CounterValue, float64(n), name)
	}
}
