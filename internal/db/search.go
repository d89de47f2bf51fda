package db

// TagQuery is the input for an exact-match lookup against a TAG field.
type TagQuery struct {
	IndexName    string
	Field        string
	Value        string
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
