package router

import (
	"context"

	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
)

// IndexMatcher is the persisted tag index used for exact route lookups.
type IndexMatcher interface {
	Supported(ctx context.Context) bool
	EnsureSchema(ctx context.Context) error
	EnsureEntries(ctx context.Context, routes []route.Route) (int, error)
	Lookup(ctx context.Context, query string) (name string, found bool, err error)
}

// StatsStore keeps per-route selection counters.
type StatsStore interface {
	InitCounters(ctx context.Context, names []string) error
	Increment(ctx context.Context, name string) (int64, error)
	Snapshot(ctx context.Context, names []string) (map[string]int64, error)
}

// HistoryStore keeps the capped recent-queries log.
type HistoryStore interface {
	Append(ctx context.Context, e domhist.Entry) error
	List(ctx context.Context, limit int) ([]domhist.Entry, int, error)
}

// EventSink receives a notification for every routing decision. Must not block.
type EventSink interface {
	Track(ev routing.Event)
}
