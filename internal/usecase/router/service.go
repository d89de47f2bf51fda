package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/semrouter/internal/domain"
	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	"github.com/kailas-cloud/semrouter/internal/metrics"
)

// Config tunes the router.
type Config struct {
	Scoring          domain.ScoringConfig
	IndexEnabled     bool
	OpTimeout        time.Duration
	MaxBatchSize     int
	BatchConcurrency int
}

// DefaultConfig returns the canonical router settings.
func DefaultConfig() Config {
	return Config{
		Scoring:          domain.DefaultScoringConfig(),
		IndexEnabled:     true,
		OpTimeout:        500 * time.Millisecond,
		MaxBatchSize:     100,
		BatchConcurrency: 8,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Scoring.Normalization <= 0 {
		c.Scoring.Normalization = d.Scoring.Normalization
	}
	if c.Scoring.DefaultConfidence <= 0 {
		c.Scoring.DefaultConfidence = d.Scoring.DefaultConfidence
	}
	if c.Scoring.HistoryCap <= 0 {
		c.Scoring.HistoryCap = d.Scoring.HistoryCap
	}
	if c.Scoring.QueryLogMaxChars <= 0 {
		c.Scoring.QueryLogMaxChars = d.Scoring.QueryLogMaxChars
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = d.OpTimeout
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = d.MaxBatchSize
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = d.BatchConcurrency
	}
	return c
}

// Statistics is a snapshot of persisted route counters.
type Statistics struct {
	Counts map[string]int64
	Total  int64
}

// Service routes queries to the declared routes and records every decision.
// Safe for concurrent use; holds no per-query state.
type Service struct {
	reg     *route.Registry
	stats   StatsStore
	history HistoryStore
	index   IndexMatcher
	events  EventSink
	cfg     Config
	count   route.Count
	logger  *zap.Logger
	now     func() time.Time

	indexOn atomic.Bool
}

// New creates a router. The index path stays off until WithIndex and Init.
func New(reg *route.Registry, stats StatsStore, history HistoryStore, cfg Config, logger *zap.Logger) *Service {
	cfg = cfg.withDefaults()
	count := route.CountEntries
	if cfg.Scoring.CountOccurrences {
		count = route.CountOccurrences
	}
	return &Service{
		reg:     reg,
		stats:   stats,
		history: history,
		cfg:     cfg,
		count:   count,
		logger:  logger,
		now:     time.Now,
	}
}

// WithIndex enables index-backed lookups ahead of keyword scoring.
func (s *Service) WithIndex(ix IndexMatcher) *Service {
	s.index = ix
	return s
}

// WithEvents attaches a sink notified of every routing decision.
func (s *Service) WithEvents(sink EventSink) *Service {
	s.events = sink
	return s
}

// Init prepares the route index and the zeroed counters. Safe to run on
// every start and from several instances sharing one store. Index failures
// only disable the index path; counter failures are returned.
func (s *Service) Init(ctx context.Context) error {
	s.initIndex(ctx)

	if err := s.stats.InitCounters(ctx, s.reg.Names()); err != nil {
		return fmt.Errorf("init counters: %w", err)
	}
	s.logger.Info("Router initialized",
		zap.Int("routes", s.reg.Len()),
		zap.Bool("index", s.indexOn.Load()),
	)
	return nil
}

func (s *Service) initIndex(ctx context.Context) {
	s.indexOn.Store(false)
	if s.index == nil || !s.cfg.IndexEnabled {
		return
	}
	if !s.index.Supported(ctx) {
		s.logger.Info("Route index disabled: backend lacks tag search")
		return
	}
	if err := s.index.EnsureSchema(ctx); err != nil {
		s.logger.Warn("Route index disabled: schema unavailable", zap.Error(err))
		return
	}
	created, err := s.index.EnsureEntries(ctx, s.reg.All())
	if err != nil {
		s.logger.Warn("Route index entries incomplete", zap.Int("created", created), zap.Error(err))
	}
	s.indexOn.Store(true)
}

// IndexEnabled reports whether lookups currently try the index first.
func (s *Service) IndexEnabled() bool {
	return s.indexOn.Load()
}

// Route classifies query and records the decision. The returned Result is
// valid whenever the query is non-blank; a non-nil error alongside it wraps
// domain.ErrStoreUnavailable and means the statistics or history write failed.
func (s *Service) Route(ctx context.Context, query string) (routing.Result, error) {
	if strings.TrimSpace(query) == "" {
		return routing.Result{}, domain.ErrEmptyQuery
	}

	start := time.Now()
	res := s.classify(ctx, query)
	persistErr := s.record(ctx, query, res)

	if s.events != nil {
		s.events.Track(routing.Event{
			Route:      res.Route,
			Method:     res.Method,
			Confidence: res.Confidence,
			Query:      domhist.Truncate(query, s.cfg.Scoring.QueryLogMaxChars),
			Timestamp:  s.now().Unix(),
		})
	}

	metrics.RoutesTotal.WithLabelValues(res.Route, string(res.Method)).Inc()
	metrics.RouteConfidence.WithLabelValues(string(res.Method)).Observe(res.Confidence)
	metrics.RouteDuration.Observe(time.Since(start).Seconds())

	return res, persistErr
}

// Classify picks a route without recording anything.
func (s *Service) Classify(ctx context.Context, query string) (routing.Result, error) {
	if strings.TrimSpace(query) == "" {
		return routing.Result{}, domain.ErrEmptyQuery
	}
	return s.classify(ctx, query), nil
}

func (s *Service) classify(ctx context.Context, query string) routing.Result {
	if s.indexOn.Load() {
		if name, ok := s.lookup(ctx, query); ok {
			return routing.Result{Route: name, Confidence: 1, Method: routing.MethodIndex}
		}
	}

	scores := route.ScoreQuery(query, s.reg, s.count)
	best := scores.Best()
	res := routing.Result{
		Method: routing.MethodKeyword,
		Score:  best.Value,
		Scores: scores.Map(),
	}
	if best.Value == 0 {
		res.Route = s.reg.Default().Name()
		res.Confidence = s.cfg.Scoring.DefaultConfidence
		res.Defaulted = true
		return res
	}
	res.Route = best.Route
	res.Confidence = min(float64(best.Value)/s.cfg.Scoring.Normalization, 1)
	return res
}

// lookup asks the index for an exact match. Errors count as a miss.
func (s *Service) lookup(ctx context.Context, query string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	name, found, err := s.index.Lookup(ctx, query)
	switch {
	case err != nil:
		metrics.IndexLookupsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Route index lookup failed, using keywords", zap.Error(err))
		return "", false
	case !found:
		metrics.IndexLookupsTotal.WithLabelValues("miss").Inc()
		return "", false
	case !s.reg.Has(name):
		metrics.IndexLookupsTotal.WithLabelValues("miss").Inc()
		s.logger.Warn("Route index returned unknown route", zap.String("route", name))
		return "", false
	}
	metrics.IndexLookupsTotal.WithLabelValues("hit").Inc()
	return name, true
}

// record bumps the route counter and appends to history. Both writes are
// attempted; failures are joined.
func (s *Service) record(ctx context.Context, query string, res routing.Result) error {
	var errs []error

	ictx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	_, err := s.stats.Increment(ictx, res.Route)
	cancel()
	if err != nil {
		metrics.PersistErrorsTotal.WithLabelValues("increment").Inc()
		errs = append(errs, err)
	}

	entry := domhist.NewEntry(s.now(), query, res.Route, s.cfg.Scoring.QueryLogMaxChars)
	hctx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	err = s.history.Append(hctx, entry)
	cancel()
	if err != nil {
		metrics.PersistErrorsTotal.WithLabelValues("history").Inc()
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	joined := errors.Join(errs...)
	s.logger.Warn("Routing decision not fully recorded",
		zap.String("route", res.Route),
		zap.Error(joined),
	)
	if !errors.Is(joined, domain.ErrStoreUnavailable) {
		joined = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, joined)
	}
	return joined
}

// RouteBatch routes queries concurrently and returns items in input order.
func (s *Service) RouteBatch(ctx context.Context, queries []string) ([]routing.BatchItem, error) {
	if len(queries) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d queries, max %d", domain.ErrBatchTooLarge, len(queries), s.cfg.MaxBatchSize)
	}

	items := make([]routing.BatchItem, len(queries))
	var g errgroup.Group
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			res, err := s.Route(ctx, q)
			items[i] = routing.BatchItem{Query: q, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

// Routes returns the declared routes in order.
func (s *Service) Routes() []route.Route {
	return s.reg.All()
}

// Statistics returns counters for every declared route.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	counts, err := s.stats.Snapshot(ctx, s.reg.Names())
	if err != nil {
		return Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return Statistics{Counts: counts, Total: total}, nil
}

// Counts returns counters for every declared route.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	st, err := s.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return st.Counts, nil
}

// History returns up to limit recent decisions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domhist.Entry, error) {
	entries, skipped, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("Skipped undecodable history entries", zap.Int("count", skipped))
	}
	return entries, nil
}
