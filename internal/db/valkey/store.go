package valkey

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/semrouter/internal/db"
	"github.com/kailas-cloud/semrouter/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config = redis.Config

// Store implements db.Store for Valkey. Hash and list commands are shared with
// the Redis backend; valkey-search cannot run tag-only FT.SEARCH (every query
// needs a KNN clause), so the index path reports itself unsupported.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	inner, err := redis.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("valkey: %w", err)
	}
	return &Store{Store: inner}, nil
}

// SupportsTagSearch returns false: valkey-search requires a vector clause.
func (s *Store) SupportsTagSearch(_ context.Context) bool {
	return false
}

// CreateIndex is not available on Valkey for TEXT/TAG-only schemas.
func (s *Store) CreateIndex(_ context.Context, _ *db.IndexDefinition) error {
	return &db.Error{Op: db.OpCreateIndex, Err: db.ErrSearchUnsupported}
}

// SearchTag is not available on Valkey.
func (s *Store) SearchTag(_ context.Context, _ *db.TagQuery) (*db.SearchResult, error) {
	return nil, &db.Error{Op: db.OpSearch, Err: db.ErrSearchUnsupported}
}
