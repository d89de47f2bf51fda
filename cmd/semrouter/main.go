package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semrouter/internal/config"
	"github.com/kailas-cloud/semrouter/internal/db"
	dbRedis "github.com/kailas-cloud/semrouter/internal/db/redis"
	dbValkey "github.com/kailas-cloud/semrouter/internal/db/valkey"
	"github.com/kailas-cloud/semrouter/internal/domain"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	"github.com/kailas-cloud/semrouter/internal/events"
	logpkg "github.com/kailas-cloud/semrouter/internal/logger"
	"github.com/kailas-cloud/semrouter/internal/metrics"
	historyrepo "github.com/kailas-cloud/semrouter/internal/repository/history"
	"github.com/kailas-cloud/semrouter/internal/repository/routeindex"
	statsrepo "github.com/kailas-cloud/semrouter/internal/repository/stats"
	chiTransport "github.com/kailas-cloud/semrouter/internal/transport/chi"
	healthuc "github.com/kailas-cloud/semrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/semrouter/internal/usecase/router"
	"github.com/kailas-cloud/semrouter/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semrouter API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("routes", len(cfg.Routes)),
	)

	reg, err := buildRegistry(cfg.Routes)
	if err != nil {
		logger.Fatal("Invalid route configuration", zap.Error(err))
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterRouterMetrics()

	opTimeout := time.Duration(cfg.Database.OpTimeoutMs) * time.Millisecond
	prefix := cfg.Storage.KeyPrefix

	stats := statsrepo.New(store, prefix)
	history := historyrepo.New(store, prefix, cfg.Router.HistoryCap)
	index := routeindex.New(store, prefix, cfg.Router.IndexMaxTags)

	router := routeruc.New(reg, stats, history, routeruc.Config{
		Scoring: domain.ScoringConfig{
			Normalization:     cfg.Router.Normalization,
			DefaultConfidence: cfg.Router.DefaultConfidence,
			HistoryCap:        cfg.Router.HistoryCap,
			QueryLogMaxChars:  cfg.Router.QueryLogMaxChars,
			CountOccurrences:  cfg.Router.CountOccurrences,
		},
		IndexEnabled:     cfg.Router.IndexOn(),
		OpTimeout:        opTimeout,
		MaxBatchSize:     cfg.Router.MaxBatchSize,
		BatchConcurrency: cfg.Router.BatchConcurrency,
	}, logger).WithIndex(index)

	if cfg.Events.Enabled() {
		pub := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
		collector := startEvents(pub, cfg.Events.BufferSize, logger)
		router.WithEvents(collector)
		defer func() {
			collector.Close()
			if err := pub.Close(); err != nil {
				logger.Warn("Failed to close event publisher", zap.Error(err))
			}
		}()
		logger.Info("Route events enabled",
			zap.Strings("brokers", cfg.Events.Brokers),
			zap.String("topic", cfg.Events.Topic),
		)
	}

	if err := router.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize router", zap.Error(err))
	}

	prometheus.MustRegister(metrics.NewSelectionsCollector(router, opTimeout*2, logger))

	var indexCheck healthuc.IndexChecker
	if router.IndexEnabled() {
		indexCheck = index
	}
	healthSvc := healthuc.New(store, indexCheck)

	server := chiTransport.NewServer(router, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

type eventPublisher interface {
	Publish(ctx context.Context, ev routing.Event) error
}

// startEvents runs the collector until Close, independent of the shutdown signal.
func startEvents(pub eventPublisher, bufferSize int, logger *zap.Logger) *events.Collector {
	c := events.NewCollector(pub, bufferSize, logger)
	c.Start(context.Background())
	return c
}

// openStore picks the backend by driver name.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey":
		return dbValkey.NewStore(dbValkey.Config{Addrs: cfg.Addrs, Password: cfg.Password})
	case "redis":
		return dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildRegistry turns the configured routes into the immutable registry, keeping file order.
func buildRegistry(rcs []config.RouteConfig) (*route.Registry, error) {
	routes := make([]route.Route, 0, len(rcs))
	for _, rc := range rcs {
		rt, err := route.New(rc.Name, rc.Description, rc.Keywords, rc.Weight)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", rc.Name, err)
		}
		routes = append(routes, rt)
	}
	return route.NewRegistry(routes)
}
