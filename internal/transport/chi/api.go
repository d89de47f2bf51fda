package chi

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeEmptyQuery       ErrorCode = "empty_query"
	CodeBatchTooLarge    ErrorCode = "batch_too_large"
	CodeNotFound         ErrorCode = "not_found"
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeIndexUnavailable ErrorCode = "index_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RouteRequest is the body of POST /v1/route and /v1/classify.
type RouteRequest struct {
	Query string `json:"query"`
}

// RouteResponse describes one routing decision.
type RouteResponse struct {
	Route         string         `json:"route"`
	Confidence    float64        `json:"confidence"`
	Method        string         `json:"method"`
	Score         int            `json:"score"`
	Scores        map[string]int `json:"scores,omitempty"`
	Defaulted     bool           `json:"defaulted"`
	StatsRecorded *bool          `json:"stats_recorded,omitempty"`
}

// BatchRequest is the body of POST /v1/route/batch.
type BatchRequest struct {
	Queries []string `json:"queries"`
}

// BatchItem is one entry of BatchResponse, in request order.
type BatchItem struct {
	Query  string         `json:"query"`
	Result *RouteResponse `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /v1/route/batch.
type BatchResponse struct {
	Items []BatchItem `json:"items"`
}

// RouteInfo describes a declared route.
type RouteInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords"`
	Weight      int      `json:"weight"`
	Default     bool     `json:"default,omitempty"`
}

// RoutesResponse is the body returned by GET /v1/routes.
type RoutesResponse struct {
	Items        []RouteInfo `json:"items"`
	IndexEnabled bool        `json:"index_enabled"`
}

// StatsResponse is the body returned by GET /v1/stats.
type StatsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// HistoryItem is one recorded decision.
type HistoryItem struct {
	Timestamp int64  `json:"ts"`
	Time      string `json:"time"`
	Query     string `json:"query"`
	Route     string `json:"route"`
}

// HistoryResponse is the body returned by GET /v1/history.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
