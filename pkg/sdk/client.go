package semrouter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrouter/internal/db"
	dbRedis "github.com/kailas-cloud/semrouter/internal/db/redis"
	dbValkey "github.com/kailas-cloud/semrouter/internal/db/valkey"
	"github.com/kailas-cloud/semrouter/internal/domain"
	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	historyrepo "github.com/kailas-cloud/semrouter/internal/repository/history"
	"github.com/kailas-cloud/semrouter/internal/repository/routeindex"
	statsrepo "github.com/kailas-cloud/semrouter/internal/repository/stats"
	healthuc "github.com/kailas-cloud/semrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/semrouter/internal/usecase/router"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "semantic:"
)

// Internal interfaces, swapped out in tests.
type routerUseCase interface {
	Init(ctx context.Context) error
	Route(ctx context.Context, query string) (routing.Result, error)
	Classify(ctx context.Context, query string) (routing.Result, error)
	RouteBatch(ctx context.Context, queries []string) ([]routing.BatchItem, error)
	Routes() []route.Route
	Statistics(ctx context.Context) (routeruc.Statistics, error)
	History(ctx context.Context, limit int) ([]domhist.Entry, error)
	IndexEnabled() bool
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the semrouter SDK entry point. Safe for concurrent use.
type Client struct {
	store     db.Store
	router    routerUseCase
	healthSvc healthUseCase
	index     healthuc.IndexChecker
	obs       *observer
}

// New connects to the store, bootstraps counters (and the route index on
// Redis) and returns a ready Client. ctx bounds the readiness wait and
// bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("semrouter: database address required (use WithValkey or WithRedis)")
	}
	// The prefix becomes part of the FT index name.
	if cfg.keyPrefix != "" && !db.IsValidIdentifier(cfg.keyPrefix) {
		return nil, fmt.Errorf("semrouter: %w: key prefix %q may only contain [a-zA-Z0-9_:-]", ErrConfig, cfg.keyPrefix)
	}
	if len(cfg.routes) == 0 {
		cfg.routes = DefaultRoutes()
	}
	reg, err := buildRegistry(cfg.routes)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("semrouter: database not ready: %w", err)
	}

	c := wireClient(store, reg, cfg, obs)
	if err := c.router.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("semrouter: init: %w", err)
	}
	c.healthSvc = newHealth(store, c.router, c.index)
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("semrouter: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("semrouter: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("semrouter: unknown driver %q", cfg.driver)
	}
}

func buildRegistry(routes []Route) (*route.Registry, error) {
	out := make([]route.Route, 0, len(routes))
	for _, r := range routes {
		rt, err := route.New(r.Name, r.Description, r.Keywords, r.Weight)
		if err != nil {
			return nil, fmt.Errorf("semrouter: route %q: %w", r.Name, err)
		}
		out = append(out, rt)
	}
	reg, err := route.NewRegistry(out)
	if err != nil {
		return nil, fmt.Errorf("semrouter: %w", err)
	}
	return reg, nil
}

func wireClient(store db.Store, reg *route.Registry, cfg *clientConfig, obs *observer) *Client {
	rcfg := routeruc.DefaultConfig()
	rcfg.IndexEnabled = !cfg.disableIndex
	if cfg.historyCap > 0 {
		rcfg.Scoring.HistoryCap = cfg.historyCap
	}
	if cfg.opTimeout > 0 {
		rcfg.OpTimeout = cfg.opTimeout
	}

	index := routeindex.New(store, cfg.keyPrefix, routeindex.DefaultMaxTags)
	router := routeruc.New(
		reg,
		statsrepo.New(store, cfg.keyPrefix),
		historyrepo.New(store, cfg.keyPrefix, rcfg.Scoring.HistoryCap),
		rcfg,
		zap.NewNop(),
	).WithIndex(index)

	return &Client{
		store:     store,
		router:    router,
		healthSvc: healthuc.New(store, nil),
		index:     index,
		obs:       obs,
	}
}

// newHealth reports route_index only while the router serves from it.
// Call after Init, which may switch the index off.
func newHealth(pinger healthuc.DBPinger, router routerUseCase, index healthuc.IndexChecker) *healthuc.Service {
	if !router.IndexEnabled() {
		index = nil
	}
	return healthuc.New(pinger, index)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Route picks a route for query and records the decision. A blank query
// returns ErrEmptyQuery. When recording fails the Result is still valid and
// the error wraps ErrStoreUnavailable.
func (c *Client) Route(ctx context.Context, query string) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("route", start, err) }()

	r, err := c.router.Route(ctx, query)
	if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
		return Result{}, fmt.Errorf("route: %w", err)
	}
	res = resultFromDomain(r)
	c.obs.decision(res)
	if err != nil {
		return res, fmt.Errorf("route: %w", err)
	}
	return res, nil
}

// Classify picks a route without recording anything.
func (c *Client) Classify(ctx context.Context, query string) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("classify", start, err) }()

	r, err := c.router.Classify(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	return resultFromDomain(r), nil
}

// RouteBatch routes queries concurrently, preserving order.
func (c *Client) RouteBatch(ctx context.Context, queries []string) (out []BatchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("route_batch", start, err) }()

	items, err := c.router.RouteBatch(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("route batch: %w", err)
	}
	out = make([]BatchResult, len(items))
	for i, it := range items {
		out[i] = BatchResult{Query: it.Query, Err: it.Err}
		if it.Err == nil || errors.Is(it.Err, domain.ErrStoreUnavailable) {
			out[i].Result = resultFromDomain(it.Result)
			c.obs.decision(out[i].Result)
		}
	}
	return out, nil
}

// Statistics returns persisted selection counts for every declared route.
func (c *Client) Statistics(ctx context.Context) (st Statistics, err error) {
	start := time.Now()
	defer func() { c.obs.observe("statistics", start, err) }()

	s, err := c.router.Statistics(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return Statistics{Counts: s.Counts, Total: s.Total}, nil
}

// History returns up to limit recent decisions, newest first. limit <= 0
// returns the whole capped list.
func (c *Client) History(ctx context.Context, limit int) (out []HistoryEntry, err error) {
	start := time.Now()
	defer func() { c.obs.observe("history", start, err) }()

	entries, err := c.router.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	out = make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{Time: e.Time(), Query: e.Query, Route: e.Route}
	}
	return out, nil
}

// Routes returns the declared routes in order; the first is the default.
func (c *Client) Routes() []Route {
	rs := c.router.Routes()
	out := make([]Route, len(rs))
	for i, r := range rs {
		out[i] = Route{
			Name:        r.Name(),
			Description: r.Description(),
			Keywords:    r.Keywords(),
			Weight:      r.Weight(),
		}
	}
	return out
}

// IndexEnabled reports whether the index-backed lookup is in use.
func (c *Client) IndexEnabled() bool {
	return c.router.IndexEnabled()
}

func resultFromDomain(r routing.Result) Result {
	return Result{
		Route:      r.Route,
		Confidence: r.Confidence,
		Method:     Method(r.Method),
		Score:      r.Score,
		Scores:     r.Scores,
		Defaulted:  r.Defaulted,
	}
}
