package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semrouter/internal/db"
)

// pushTrim keeps push and trim in one server-side step so concurrent
// writers never observe the list above its cap.
var pushTrim = rueidis.NewLuaScript(`
redis.call('LPUSH', KEYS[1], ARGV[1])
redis.call('LTRIM', KEYS[1], 0, tonumber(ARGV[2]) - 1)
return 1
`)

// LPushTrim prepends value to the list at key and trims it to maxLen items.
func (s *Store) LPushTrim(ctx context.Context, key, value string, maxLen int) error {
	if maxLen <= 0 {
		return &db.Error{Op: db.OpLPushTrim, Err: errors.New("max length must be positive")}
	}
	res := pushTrim.Exec(ctx, s.client, []string{key}, []string{value, strconv.Itoa(maxLen)})
	if err := res.Error(); err != nil {
		return &db.Error{Op: db.OpLPushTrim, Err: err}
	}
	return nil
}

// LRange returns list items between start and stop (inclusive).
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return items, nil
}
