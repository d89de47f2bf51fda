package routeindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/semrouter/internal/db"
	"github.com/kailas-cloud/semrouter/internal/domain"
	"github.com/kailas-cloud/semrouter/internal/domain/route"
)

// store is the consumer interface for the route tag index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SupportsTagSearch(ctx context.Context) bool
	SearchTag(ctx context.Context, q *db.TagQuery) (*db.SearchResult, error)
}

const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldKeywords    = "keywords"
	tagSeparator     = ","
)

// DefaultMaxTags bounds the keywords indexed per route.
const DefaultMaxTags = 10

// Repo manages the persisted route index used for exact tag lookups.
type Repo struct {
	store     store
	indexName string
	keyPrefix string
	maxTags   int
}

// New creates a route index repository. Records live under <prefix>route:
// and the index is named <prefix>routes:idx.
func New(s store, prefix string, maxTags int) *Repo {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Repo{
		store:     s,
		indexName: prefix + "routes:idx",
		keyPrefix: prefix + "route:",
		maxTags:   maxTags,
	}
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string { return r.indexName }

// RecordKey returns the hash key for a route's index record.
func (r *Repo) RecordKey(name string) string { return r.keyPrefix + name }

// Supported reports whether the backend can serve tag lookups.
func (r *Repo) Supported(ctx context.Context) bool {
	return r.store.SupportsTagSearch(ctx)
}

// Definition returns the index schema.
func (r *Repo) Definition() (*db.IndexDefinition, error) {
	return db.NewIndex(r.indexName).
		Prefix(r.keyPrefix).
		Tag(fieldName).
		Text(fieldDescription).
		TagWithOpts(fieldKeywords, tagSeparator, false).
		Build()
}

// EnsureSchema creates the index; an existing index is success.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	def, err := r.Definition()
	if err != nil {
		return fmt.Errorf("%w: build index: %w", domain.ErrIndexUnavailable, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("%w: create index %s: %w", domain.ErrIndexUnavailable, r.indexName, err)
	}
	return nil
}

// EnsureEntries writes an index record for every route that has none.
// Existing records are left untouched. Returns how many were created;
// a failing route does not stop the others.
func (r *Repo) EnsureEntries(ctx context.Context, routes []route.Route) (int, error) {
	created := 0
	var errs []error
	for _, rt := range routes {
		key := r.RecordKey(rt.Name())
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("check %s: %w", key, err))
			continue
		}
		if exists {
			continue
		}
		if err := r.store.HSet(ctx, key, r.record(rt)); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", key, err))
			continue
		}
		created++
	}
	if len(errs) > 0 {
		return created, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, errors.Join(errs...))
	}
	return created, nil
}

func (r *Repo) record(rt route.Route) map[string]string {
	return map[string]string{
		fieldName:        rt.Name(),
		fieldDescription: rt.Description(),
		fieldKeywords:    strings.Join(Tags(rt.Keywords(), r.maxTags), tagSeparator),
	}
}

// Tags returns the first max keywords usable as tags; keywords holding
// the separator are skipped.
func Tags(keywords []string, maxTags int) []string {
	out := make([]string, 0, min(len(keywords), maxTags))
	for _, kw := range keywords {
		if len(out) == maxTags {
			break
		}
		if strings.Contains(kw, tagSeparator) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// Lookup probes the index with the whole lower-cased query as a tag value.
// Zero hits is not an error.
func (r *Repo) Lookup(ctx context.Context, query string) (string, bool, error) {
	probe := strings.ToLower(strings.TrimSpace(query))
	if probe == "" {
		return "", false, nil
	}

	res, err := r.store.SearchTag(ctx, &db.TagQuery{
		IndexName:    r.indexName,
		Field:        fieldKeywords,
		Value:        probe,
		Limit:        1,
		ReturnFields: []string{fieldName},
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: search %s: %w", domain.ErrIndexUnavailable, r.indexName, err)
	}
	if len(res.Entries) == 0 {
		return "", false, nil
	}

	entry := res.Entries[0]
	if name := entry.Fields[fieldName]; name != "" {
		return name, true, nil
	}
	// No name field: derive it from the record key.
	if name, ok := strings.CutPrefix(entry.Key, r.keyPrefix); ok && name != "" {
		return name, true, nil
	}
	return "", false, nil
}

// Check verifies the index is present.
func (r *Repo) Check(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, db.ErrIndexNotFound)
	}
	return nil
}
