package stats

import (
	"context"
	"strconv"
	"sync"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetnxFn  func(ctx context.Context, key, field, value string) (bool, error)
	hincrbyFn func(ctx context.Context, key, field string, delta int64) (int64, error)
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	if m.hsetnxFn != nil {
		return m.hsetnxFn(ctx, key, field, value)
	}
	return true, nil
}

func (m *mockStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	if m.hincrbyFn != nil {
		return m.hincrbyFn(ctx, key, field, delta)
	}
	return delta, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

// memHash is an in-memory hash with HSETNX/HINCRBY semantics.
type memHash struct {
	mu     sync.Mutex
	fields map[string]int64
}

func newMemHash() *memHash { return &memHash{fields: make(map[string]int64)} }

func (h *memHash) wire(m *mockStore) {
	m.hsetnxFn = func(_ context.Context, _, field, value string) (bool, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.fields[field]; ok {
			return false, nil
		}
		n, _ := strconv.ParseInt(value, 10, 64)
		h.fields[field] = n
		return true, nil
	}
	m.hincrbyFn = func(_ context.Context, _, field string, delta int64) (int64, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.fields[field] += delta
		return h.fields[field], nil
	}
	m.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		h.mu.Lock()
		defer h.mu.Unlock()
		out := make(map[string]string, len(h.fields))
		for k, v := range h.fields {
			out[k] = strconv.FormatInt(v, 10)
		}
		return out, nil
	}
}

func newTestRepo() (*Repo, *mockStore) {
	ms := &mockStore{}
	return New(ms, "semantic:"), ms
}
