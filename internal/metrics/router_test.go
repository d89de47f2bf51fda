package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeSource struct {
	counts map[string]int64
	err    error
}

func (f *fakeSource) Counts(context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func TestSelectionsCollector_EmitsCounters(t *testing.T) {
	c := NewSelectionsCollector(&fakeSource{counts: map[string]int64{
		"Classical Music":   3,
		"GenAI Programming": 0,
	}}, time.Second, zap.NewNop())

	want := `
# HELP semrouter_route_selections Persisted selection count per route, read from the store on scrape
# TYPE semrouter_route_selections counter
semrouter_route_selections{route="Classical Music"} 3
semrouter_route_selections{route="GenAI Programming"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestSelectionsCollector_SourceError(t *testing.T) {
	c := NewSelectionsCollector(&fakeSource{err: errors.New("down")}, 0, zap.NewNop())
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Errorf("expected no metrics on error, got %d", n)
	}
}

func TestRegisterRouterMetrics_Idempotent(t *testing.T) {
	RegisterRouterMetrics()
	RegisterRouterMetrics()

	RoutesTotal.WithLabelValues("A", "keyword").Inc()
	if v := testutil.ToFloat64(RoutesTotal.WithLabelValues("A", "keyword")); v < 1 {
		t.Errorf("routes_total = %f, want >= 1", v)
	}
}
