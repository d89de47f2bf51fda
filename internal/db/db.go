package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	ListStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// ListStore provides capped list operations.
type ListStore interface {
	// LPushTrim prepends value and trims the list to maxLen items in one atomic step.
	LPushTrim(ctx context.Context, key, value string, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTagSearch(ctx context.Context) bool
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchTag(ctx context.Context, q *TagQuery) (*SearchResult, error)
}
