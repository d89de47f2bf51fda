package router

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
)

// --- Mocks ---

type mockIndex struct {
	supported       bool
	ensureSchemaFn  func(ctx context.Context) error
	ensureEntriesFn func(ctx context.Context, routes []route.Route) (int, error)
	lookupFn        func(ctx context.Context, query string) (string, bool, error)
}

func (m *mockIndex) Supported(context.Context) bool { return m.supported }

func (m *mockIndex) EnsureSchema(ctx context.Context) error {
	if m.ensureSchemaFn != nil {
		return m.ensureSchemaFn(ctx)
	}
	return nil
}

func (m *mockIndex) EnsureEntries(ctx context.Context, routes []route.Route) (int, error) {
	if m.ensureEntriesFn != nil {
		return m.ensureEntriesFn(ctx, routes)
	}
	return len(routes), nil
}

func (m *mockIndex) Lookup(ctx context.Context, query string) (string, bool, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, query)
	}
	return "", false, nil
}

// memStats is an in-memory StatsStore with set-if-absent and atomic increment.
type memStats struct {
	mu        sync.Mutex
	counts    map[string]int64
	initCalls int
	initErr   error
	incrErr   error
	snapErr   error
	incrFn    func(ctx context.Context, name string)
}

func newMemStats() *memStats { return &memStats{counts: make(map[string]int64)} }

func (m *memStats) InitCounters(_ context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	if m.initErr != nil {
		return m.initErr
	}
	for _, n := range names {
		if _, ok := m.counts[n]; !ok {
			m.counts[n] = 0
		}
	}
	return nil
}

func (m *memStats) Increment(ctx context.Context, name string) (int64, error) {
	if m.incrFn != nil {
		m.incrFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.counts[name]++
	return m.counts[name], nil
}

func (m *memStats) Snapshot(_ context.Context, names []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapErr != nil {
		return nil, m.snapErr
	}
	out := make(map[string]int64, len(names))
	for _, n := range names {
		out[n] = m.counts[n]
	}
	return out, nil
}

func (m *memStats) get(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// memHistory is an in-memory HistoryStore with a strict cap.
type memHistory struct {
	mu        sync.Mutex
	entries   []domhist.Entry
	capacity  int
	appendErr error
	skipped   int
}

func newMemHistory(capacity int) *memHistory { return &memHistory{capacity: capacity} }

func (m *memHistory) Append(_ context.Context, e domhist.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append([]domhist.Entry{e}, m.entries...)
	if len(m.entries) > m.capacity {
		m.entries = m.entries[:m.capacity]
	}
	return nil
}

func (m *memHistory) List(_ context.Context, limit int) ([]domhist.Entry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]domhist.Entry, limit)
	copy(out, m.entries[:limit])
	return out, m.skipped, nil
}

type memSink struct {
	mu     sync.Mutex
	events []routing.Event
}

func (m *memSink) Track(ev routing.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// --- Fixtures ---

func canonicalRegistry(t *testing.T) *route.Registry {
	t.Helper()
	defs := []struct {
		name     string
		keywords []string
	}{
		{"GenAI Programming", []string{"openai", "langchain", "prompt", "llm", "rag", "embedding", "python"}},
		{"Science Fiction Entertainment", []string{"sci-fi", "star wars", "dune", "alien", "spaceship", "movie"}},
		{"Classical Music", []string{"beethoven", "mozart", "symphony", "classical music", "music", "orchestra"}},
	}
	routes := make([]route.Route, 0, len(defs))
	for _, d := range defs {
		r, err := route.New(d.name, "", d.keywords, 0)
		if err != nil {
			t.Fatal(err)
		}
		routes = append(routes, r)
	}
	reg, err := route.NewRegistry(routes)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func alphaBetaRegistry(t *testing.T) *route.Registry {
	t.Helper()
	a, _ := route.New("A", "", []string{"alpha"}, 0)
	b, _ := route.New("B", "", []string{"beta"}, 0)
	reg, err := route.NewRegistry([]route.Route{a, b})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

type fixture struct {
	svc     *Service
	stats   *memStats
	history *memHistory
}

func newFixture(t *testing.T, reg *route.Registry, cfg Config) *fixture {
	t.Helper()
	f := &fixture{stats: newMemStats(), history: newMemHistory(100)}
	f.svc = New(reg, f.stats, f.history, cfg, zap.NewNop())
	return f
}
