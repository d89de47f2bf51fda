package routeindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/semrouter/internal/db"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn            func(ctx context.Context, key string, fields map[string]string) error
	existsFn          func(ctx context.Context, key string) (bool, error)
	createIndexFn     func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn     func(ctx context.Context, name string) (bool, error)
	searchTagFn       func(ctx context.Context, q *db.TagQuery) (*db.SearchResult, error)
	supportsTagSearch bool
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) SupportsTagSearch(_ context.Context) bool {
	return m.supportsTagSearch
}

func (m *mockStore) SearchTag(ctx context.Context, q *db.TagQuery) (*db.SearchResult, error) {
	if m.searchTagFn != nil {
		return m.searchTagFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{supportsTagSearch: true}
	return New(ms, "semantic:", 0), ms
}

func testRoutes(t *testing.T) []route.Route {
	t.Helper()
	genai, err := route.New("GenAI Programming", "LLM tooling", []string{"openai", "langchain", "prompt, engineering", "rag"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	music, err := route.New("Classical Music", "Composers and orchestras", []string{"beethoven", "symphony"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return []route.Route{genai, music}
}
