package semrouter

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	routes       []Route
	keyPrefix    string
	historyCap   int
	disableIndex bool
	opTimeout    time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
// Valkey has no tag-only search, so routing always uses keyword scoring.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRoutes sets the ordered route list. Defaults to DefaultRoutes().
func WithRoutes(routes ...Route) Option {
	return optionFunc(func(c *clientConfig) {
		c.routes = append([]Route(nil), routes...)
	})
}

// WithKeyPrefix namespaces every store key. Default: "semantic:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithHistoryCap bounds the recent-decision list. Default: 100.
func WithHistoryCap(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.historyCap = n
	})
}

// WithoutIndex skips the index-backed lookup and always scores keywords.
func WithoutIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.disableIndex = true
	})
}

// WithOpTimeout bounds each store round trip made while routing. Default: 500ms.
func WithOpTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.opTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
