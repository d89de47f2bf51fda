package stats

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/semrouter/internal/domain"
)

var names = []string{"GenAI Programming", "Science Fiction Entertainment", "Classical Music"}

func TestKey(t *testing.T) {
	repo, _ := newTestRepo()
	if repo.Key() != "semantic:stats" {
		t.Errorf("Key() = %q, want semantic:stats", repo.Key())
	}
}

func TestInitCounters_Idempotent(t *testing.T) {
	repo, ms := newTestRepo()
	h := newMemHash()
	h.wire(ms)
	ctx := context.Background()

	if err := repo.InitCounters(ctx, names); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := repo.Increment(ctx, "Classical Music"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	for range 3 {
		if err := repo.InitCounters(ctx, names); err != nil {
			t.Fatalf("re-init: %v", err)
		}
	}

	snap, err := repo.Snapshot(ctx, names)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap["Classical Music"] != 1 {
		t.Errorf("Classical Music = %d, want 1 (re-init must not reset)", snap["Classical Music"])
	}
	if snap["GenAI Programming"] != 0 {
		t.Errorf("GenAI Programming = %d, want 0", snap["GenAI Programming"])
	}
}

func TestInitCounters_UsesSetIfAbsent(t *testing.T) {
	repo, ms := newTestRepo()
	var fields []string
	ms.hsetnxFn = func(_ context.Context, key, field, value string) (bool, error) {
		if key != "semantic:stats" || value != "0" {
			t.Errorf("HSETNX(%q, %q, %q)", key, field, value)
		}
		fields = append(fields, field)
		return true, nil
	}

	if err := repo.InitCounters(context.Background(), names); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != len(names) {
		t.Errorf("HSETNX called %d times, want %d", len(fields), len(names))
	}
}

func TestInitCounters_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hsetnxFn = func(context.Context, string, string, string) (bool, error) {
		return false, errors.New("connection refused")
	}

	err := repo.InitCounters(context.Background(), names)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestIncrement(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hincrbyFn = func(_ context.Context, key, field string, delta int64) (int64, error) {
		if key != "semantic:stats" || field != "GenAI Programming" || delta != 1 {
			t.Errorf("HINCRBY(%q, %q, %d)", key, field, delta)
		}
		return 5, nil
	}

	n, err := repo.Increment(context.Background(), "GenAI Programming")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("Increment = %d, want 5", n)
	}
}

func TestIncrement_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hincrbyFn = func(context.Context, string, string, int64) (int64, error) {
		return 0, context.DeadlineExceeded
	}

	_, err := repo.Increment(context.Background(), "A")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestIncrement_Concurrent(t *testing.T) {
	repo, ms := newTestRepo()
	h := newMemHash()
	h.wire(ms)
	ctx := context.Background()

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				if _, err := repo.Increment(ctx, "A"); err != nil {
					t.Errorf("increment: %v", err)
				}
			}
		})
	}
	wg.Wait()

	snap, err := repo.Snapshot(ctx, []string{"A"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap["A"] != workers*perWorker {
		t.Errorf("A = %d, want %d", snap["A"], workers*perWorker)
	}
}

func TestSnapshot_ZeroFillAndFilter(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(context.Context, string) (map[string]string, error) {
		return map[string]string{"A": "3", "Retired": "9"}, nil
	}

	snap, err := repo.Snapshot(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 2 || snap["A"] != 3 || snap["B"] != 0 {
		t.Errorf("snapshot = %v, want A=3 B=0", snap)
	}
}

func TestSnapshot_BadValue(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(context.Context, string) (map[string]string, error) {
		return map[string]string{"A": "lots"}, nil
	}
	if _, err := repo.Snapshot(context.Background(), []string{"A"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSnapshot_StoreError(t *testing.T) {
	repo, ms := newTestRepo()
	ms.hgetAllFn = func(context.Context, string) (map[string]string, error) {
		return nil, errors.New("down")
	}
	_, err := repo.Snapshot(context.Background(), names)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
