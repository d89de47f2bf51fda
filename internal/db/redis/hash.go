package redis

import (
	"context"

	"github.com/kailas-cloud/semrouter/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetNX sets a hash field only if it is absent. Reports whether it was written.
func (s *Store) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	cmd := s.b().Hsetnx().Key(key).Field(field).Value(value).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpHSetNX, Err: err}
	}
	return n == 1, nil
}

// HIncrBy atomically adds delta to a hash field and returns the new value.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	cmd := s.b().Hincrby().Key(key).Field(field).Increment(delta).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpHIncrBy, Err: err}
	}
	return n, nil
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}
