package semrouter

import "time"

// Method tells how a route was chosen.
type Method string

// Method constants.
const (
	MethodIndex   Method = "index"
	MethodKeyword Method = "keyword"
)

// Route declares one destination. The first route passed to WithRoutes is
// the default for queries that match nothing. Weight 0 means 1.
type Route struct {
	Name        string
	Description string
	Keywords    []string
	Weight      int
}

// Result is one routing decision.
type Result struct {
	Route      string
	Confidence float64
	Method     Method
	Score      int
	Scores     map[string]int // nil for index hits
	Defaulted  bool
}

// BatchResult is the outcome of one query in RouteBatch, in input order.
// Err may wrap ErrStoreUnavailable while Result is still valid.
type BatchResult struct {
	Query  string
	Result Result
	Err    error
}

// Statistics holds persisted per-route selection counts.
type Statistics struct {
	Counts map[string]int64
	Total  int64
}

// HistoryEntry is one recorded decision, newest first in History.
type HistoryEntry struct {
	Time  time.Time
	Query string // truncated
	Route string
}

// DefaultRoutes returns the three sample routes the server ships with.
func DefaultRoutes() []Route {
	return []Route{
		{
			Name:        "GenAI Programming",
			Description: "Building software with large language models",
			Keywords: []string{
				"openai", "langchain", "llamaindex", "prompt", "llm", "rag",
				"embedding", "vector database", "fine-tuning", "agent", "python",
			},
		},
		{
			Name:        "Science Fiction Entertainment",
			Description: "Sci-fi films, series and books",
			Keywords: []string{
				"sci-fi", "science fiction", "star wars", "star trek", "dune",
				"alien", "spaceship", "movie", "series", "novel",
			},
		},
		{
			Name:        "Classical Music",
			Description: "Composers, works and performances",
			Keywords: []string{
				"beethoven", "mozart", "bach", "chopin", "symphony", "sonata",
				"concerto", "classical music", "music", "orchestra", "opera",
			},
		},
	}
}
