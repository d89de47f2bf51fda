package semrouter

import (
	"context"

	domhist "github.com/kailas-cloud/semrouter/internal/domain/history"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	healthuc "github.com/kailas-cloud/semrouter/internal/usecase/health"
	routeruc "github.com/kailas-cloud/semrouter/internal/usecase/router"
)

// --- routerUseCase mock ---

type mockRouterUC struct {
	initFn       func(ctx context.Context) error
	routeFn      func(ctx context.Context, query string) (routing.Result, error)
	classifyFn   func(ctx context.Context, query string) (routing.Result, error)
	batchFn      func(ctx context.Context, queries []string) ([]routing.BatchItem, error)
	routes       []route.Route
	statisticsFn func(ctx context.Context) (routeruc.Statistics, error)
	historyFn    func(ctx context.Context, limit int) ([]domhist.Entry, error)
	indexOn      bool
}

func (m *mockRouterUC) Init(ctx context.Context) error { return m.initFn(ctx) }

func (m *mockRouterUC) Route(ctx context.Context, query string) (routing.Result, error) {
	return m.routeFn(ctx, query)
}

func (m *mockRouterUC) Classify(ctx context.Context, query string) (routing.Result, error) {
	return m.classifyFn(ctx, query)
}

func (m *mockRouterUC) RouteBatch(ctx context.Context, queries []string) ([]routing.BatchItem, error) {
	return m.batchFn(ctx, queries)
}

func (m *mockRouterUC) Routes() []route.Route { return m.routes }

func (m *mockRouterUC) Statistics(ctx context.Context) (routeruc.Statistics, error) {
	return m.statisticsFn(ctx)
}

func (m *mockRouterUC) History(ctx context.Context, limit int) ([]domhist.Entry, error) {
	return m.historyFn(ctx, limit)
}

func (m *mockRouterUC) IndexEnabled() bool { return m.indexOn }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- health dependency mocks ---

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type indexCheckFunc func(ctx context.Context) error

func (f indexCheckFunc) Check(ctx context.Context) error { return f(ctx) }

// --- helpers ---

func testClient(router routerUseCase, obs *observer) *Client {
	return &Client{router: router, obs: obs}
}
