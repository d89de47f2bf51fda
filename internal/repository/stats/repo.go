package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/semrouter/internal/domain"
)

// store is the consumer interface for route counters (ISP).
type store interface {
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo keeps per-route selection counters in a single hash.
type Repo struct {
	store store
	key   string
}

// New creates a stats repository storing counters at <prefix>stats.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, key: prefix + "stats"}
}

// Key returns the counters hash key.
func (r *Repo) Key() string { return r.key }

// InitCounters creates a zero counter for every name that has none.
// Existing counters are never reset, so it is safe to run on every start.
func (r *Repo) InitCounters(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := r.store.HSetNX(ctx, r.key, name, "0"); err != nil {
			return fmt.Errorf("%w: init counter %q: %w", domain.ErrStoreUnavailable, name, err)
		}
	}
	return nil
}

// Increment atomically adds one to the route counter and returns the new value.
func (r *Repo) Increment(ctx context.Context, name string) (int64, error) {
	n, err := r.store.HIncrBy(ctx, r.key, name, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: increment %q: %w", domain.ErrStoreUnavailable, name, err)
	}
	return n, nil
}

// Snapshot returns counters for the given routes; routes never selected read as zero.
// Fields for routes not in names are ignored.
func (r *Repo) Snapshot(ctx context.Context, names []string) (map[string]int64, error) {
	raw, err := r.store.HGetAll(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: read counters: %w", domain.ErrStoreUnavailable, err)
	}

	out := make(map[string]int64, len(names))
	for _, name := range names {
		v, ok := raw[name]
		if !ok {
			out[name] = 0
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("counter %q has non-integer value %q: %w", name, v, err)
		}
		out[name] = n
	}
	return out, nil
}
