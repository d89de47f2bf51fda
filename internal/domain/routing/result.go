package routing

// Method names the matcher that produced a routing decision.
type Method string

const (
	// MethodIndex is an exact tag hit in the persisted route index.
	MethodIndex Method = "index"
	// MethodKeyword is in-process keyword substring scoring.
	MethodKeyword Method = "keyword"
)

// Result is the outcome of one routing decision.
type Result struct {
	Route      string
	Confidence float64
	Method     Method
	// Score is the best raw keyword score; zero for index hits.
	Score int
	// Scores is the per-route keyword score map; nil for index hits.
	Scores map[string]int
	// Defaulted is true when no keyword matched and the default route was used.
	Defaulted bool
}

// BatchItem is one query's outcome within a batch.
type BatchItem struct {
	Query  string
	Result Result
	Err    error
}

// Event is the outbound notification emitted for every routing decision.
type Event struct {
	Route      string  `json:"route"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
	Query      string  `json:"query"`
	Timestamp  int64   `json:"ts"`
}
