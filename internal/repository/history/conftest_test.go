package history

import (
	"context"
	"sync"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	lpushTrimFn func(ctx context.Context, key, value string, maxLen int) error
	lrangeFn    func(ctx context.Context, key string, start, stop int64) ([]string, error)
}

func (m *mockStore) LPushTrim(ctx context.Context, key, value string, maxLen int) error {
	if m.lpushTrimFn != nil {
		return m.lpushTrimFn(ctx, key, value, maxLen)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

// memList is an in-memory list with LPUSH+LTRIM and LRANGE semantics.
type memList struct {
	mu    sync.Mutex
	items []string
}

func (l *memList) wire(m *mockStore) {
	m.lpushTrimFn = func(_ context.Context, _, value string, maxLen int) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.items = append([]string{value}, l.items...)
		if len(l.items) > maxLen {
			l.items = l.items[:maxLen]
		}
		return nil
	}
	m.lrangeFn = func(_ context.Context, _ string, start, stop int64) ([]string, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		n := int64(len(l.items))
		if start >= n {
			return nil, nil
		}
		if stop >= n {
			stop = n - 1
		}
		out := make([]string, stop-start+1)
		copy(out, l.items[start:stop+1])
		return out, nil
	}
}
