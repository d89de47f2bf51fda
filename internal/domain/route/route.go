package route

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/semrouter/internal/domain"
)

// Route is a named topical category with its keyword list (immutable value object).
type Route struct {
	name        string
	description string
	keywords    []string
	weight      int
}

// New validates and creates a Route. Keywords are lower-cased and blank
// entries dropped; order is kept and duplicates are allowed. Weight 0 means 1.
func New(name, description string, keywords []string, weight int) (Route, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Route{}, fmt.Errorf("%w: route name is required", domain.ErrConfig)
	}
	if weight < 0 {
		return Route{}, fmt.Errorf("%w: route %q: weight must not be negative", domain.ErrConfig, name)
	}
	if weight == 0 {
		weight = 1
	}

	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		kws = append(kws, kw)
	}

	return Route{
		name:        name,
		description: description,
		keywords:    kws,
		weight:      weight,
	}, nil
}

// Name returns the unique route name.
func (r Route) Name() string { return r.name }

// Description returns the free-text description.
func (r Route) Description() string { return r.description }

// Keywords returns a copy of the lower-cased keyword list.
func (r Route) Keywords() []string {
	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}

// Weight returns the score multiplier.
func (r Route) Weight() int { return r.weight }
