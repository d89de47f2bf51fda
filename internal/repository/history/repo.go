package history

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/semrouter/internal/domain"
	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
)

// store is the consumer interface for the recent-queries list (ISP).
type store interface {
	LPushTrim(ctx context.Context, key, value string, maxLen int) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo keeps a capped, newest-first log of routed queries.
type Repo struct {
	store    store
	key      string
	capacity int
}

// New creates a history repository storing entries at <prefix>recent_queries.
func New(s store, prefix string, capacity int) *Repo {
	if capacity <= 0 {
		capacity = domain.DefaultScoringConfig().HistoryCap
	}
	return &Repo{store: s, key: prefix + "recent_queries", capacity: capacity}
}

// Key returns the list key.
func (r *Repo) Key() string { return r.key }

// Capacity returns the maximum number of retained entries.
func (r *Repo) Capacity() int { return r.capacity }

// Append pushes e to the front and trims the list to capacity in one step.
func (r *Repo) Append(ctx context.Context, e domhist.Entry) error {
	raw, err := domhist.Encode(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if err := r.store.LPushTrim(ctx, r.key, raw, r.capacity); err != nil {
		return fmt.Errorf("%w: append history: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 or above
// capacity returns the whole list. Undecodable items are skipped and
// reported through the returned skipped count.
func (r *Repo) List(ctx context.Context, limit int) (entries []domhist.Entry, skipped int, err error) {
	if limit <= 0 || limit > r.capacity {
		limit = r.capacity
	}

	items, err := r.store.LRange(ctx, r.key, 0, int64(limit-1))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read history: %w", domain.ErrStoreUnavailable, err)
	}

	entries = make([]domhist.Entry, 0, len(items))
	for _, raw := range items {
		e, err := domhist.Decode(raw)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}
