package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semrouter/internal/domain"
	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	logpkg "github.com/kailas-cloud/semrouter/internal/logger"
	healthuc "github.com/kailas-cloud/semrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/semrouter/internal/usecase/router"
	"github.com/kailas-cloud/semrouter/internal/version"
)

const maxBodyBytes = 1 << 20

// Router is the routing use case consumed by the HTTP layer.
type Router interface {
	Route(ctx context.Context, query string) (routing.Result, error)
	Classify(ctx context.Context, query string) (routing.Result, error)
	RouteBatch(ctx context.Context, queries []string) ([]routing.BatchItem, error)
	Routes() []route.Route
	IndexEnabled() bool
	Statistics(ctx context.Context) (routeruc.Statistics, error)
	History(ctx context.Context, limit int) ([]domhist.Entry, error)
}

// HealthChecker aggregates component checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the routing HTTP API.
type Server struct {
	router        Router
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(router Router, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{router: router, health: health, logger: logger}
	for _, m := range sentinels {
		s.errorHandlers = append(s.errorHandlers, sentinelHandler(m.err, m.status, m.code))
	}
	return s
}

// Mount registers the API on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/route", s.RouteQuery)
		r.Post("/route/batch", s.RouteBatch)
		r.Post("/classify", s.Classify)
		r.Get("/routes", s.ListRoutes)
		r.Get("/stats", s.GetStats)
		r.Get("/history", s.GetHistory)
	})
}

// RouteQuery handles POST /v1/route.
func (s *Server) RouteQuery(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.router.Route(r.Context(), req.Query)
	if err != nil && !notRecorded(err) {
		s.handleDomainError(w, r, err)
		return
	}
	if err != nil {
		s.log(r).Warn("Routing decision returned without stats", zap.Error(err))
	}

	resp := resultToAPI(res)
	ok := err == nil
	resp.StatsRecorded = &ok
	writeJSON(w, http.StatusOK, resp)
}

// Classify handles POST /v1/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.router.Classify(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToAPI(res))
}

// RouteBatch handles POST /v1/route/batch.
func (s *Server) RouteBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "queries must not be empty")
		return
	}

	items, err := s.router.RouteBatch(r.Context(), req.Queries)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := BatchResponse{Items: make([]BatchItem, len(items))}
	for i, it := range items {
		resp.Items[i] = batchItemToAPI(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRoutes handles GET /v1/routes.
func (s *Server) ListRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := s.router.Routes()
	resp := RoutesResponse{
		Items:        make([]RouteInfo, len(routes)),
		IndexEnabled: s.router.IndexEnabled(),
	}
	for i, rt := range routes {
		resp.Items[i] = RouteInfo{
			Name:        rt.Name(),
			Description: rt.Description(),
			Keywords:    rt.Keywords(),
			Weight:      rt.Weight(),
			Default:     i == 0,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStats handles GET /v1/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.router.Statistics(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Counts: st.Counts, Total: st.Total})
}

// GetHistory handles GET /v1/history?limit=N.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.router.History(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := HistoryResponse{Items: make([]HistoryItem, len(entries))}
	for i, e := range entries {
		resp.Items[i] = HistoryItem{
			Timestamp: e.Timestamp,
			Time:      e.Time().UTC().Format(time.RFC3339),
			Query:     e.Query,
			Route:     e.Route,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// notRecorded reports whether err only means the decision was not persisted.
func notRecorded(err error) bool {
	return errors.Is(err, domain.ErrStoreUnavailable)
}

func resultToAPI(res routing.Result) *RouteResponse {
	return &RouteResponse{
		Route:      res.Route,
		Confidence: res.Confidence,
		Method:     string(res.Method),
		Score:      res.Score,
		Scores:     res.Scores,
		Defaulted:  res.Defaulted,
	}
}

func batchItemToAPI(it routing.BatchItem) BatchItem {
	out := BatchItem{Query: it.Query}
	if it.Err != nil && !notRecorded(it.Err) {
		out.Error = &ErrorResponse{Code: errorCode(it.Err), Message: safeDomainMessage(it.Err)}
		return out
	}
	out.Result = resultToAPI(it.Result)
	ok := it.Err == nil
	out.Result.StatsRecorded = &ok
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

var sentinels = []struct {
	err    error
	status int
	code   ErrorCode
}{
	{domain.ErrEmptyQuery, http.StatusBadRequest, CodeEmptyQuery},
	{domain.ErrBatchTooLarge, http.StatusBadRequest, CodeBatchTooLarge},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable},
	{domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable},
}

func errorCode(err error) ErrorCode {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return CodeInternalError
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}
