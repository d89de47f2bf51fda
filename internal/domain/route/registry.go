package route

import (
	"fmt"

	"github.com/kailas-cloud/semrouter/internal/domain"
)

// Registry holds the fixed route set in declaration order.
type Registry struct {
	routes []Route
	byName map[string]int
}

// NewRegistry builds a registry. Fails with domain.ErrConfig when routes is
// empty or names collide.
func NewRegistry(routes []Route) (*Registry, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: at least one route is required", domain.ErrConfig)
	}

	reg := &Registry{
		routes: make([]Route, len(routes)),
		byName: make(map[string]int, len(routes)),
	}
	for i, r := range routes {
		if r.name == "" {
			return nil, fmt.Errorf("%w: route %d has no name", domain.ErrConfig, i)
		}
		if _, dup := reg.byName[r.name]; dup {
			return nil, fmt.Errorf("%w: duplicate route name %q", domain.ErrConfig, r.name)
		}
		reg.byName[r.name] = i
		reg.routes[i] = r
	}
	return reg, nil
}

// All returns routes in declaration order.
func (r *Registry) All() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Names returns route names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.routes))
	for i := range r.routes {
		out[i] = r.routes[i].name
	}
	return out
}

// Get returns the route with the given name.
func (r *Registry) Get(name string) (Route, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Route{}, false
	}
	return r.routes[i], true
}

// Has reports whether name is a declared route.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Default returns the first declared route.
func (r *Registry) Default() Route {
	return r.routes[0]
}

// Len returns the number of routes.
func (r *Registry) Len() int {
	return len(r.routes)
}
