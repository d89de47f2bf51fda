package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/semrouter/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// SupportsTagSearch returns true: Redis 8+ runs tag-only FT.SEARCH queries.
func (s *Store) SupportsTagSearch(_ context.Context) bool {
	return true
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.IndexFieldText:
		args = append(args, "TEXT")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, errors.New("unknown field type")
	}

	return args, nil
}
