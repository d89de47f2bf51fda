package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semrouter/internal/db"
)

// SearchTag runs an exact-match TAG query via FT.SEARCH.
func (s *Store) SearchTag(ctx context.Context, q *db.TagQuery) (*db.SearchResult, error) {
	args, err := buildTagSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw)
}

func buildTagSearchArgs(q *db.TagQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Field == "" {
		return nil, errors.New("field is required")
	}
	if strings.TrimSpace(q.Value) == "" {
		return nil, errors.New("value is required")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	args := []string{q.IndexName, buildTagFilter(q.Field, q.Value)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	)
	return args, nil
}

// --- Result parsing ---

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, EscapeTag(value))
}

// EscapeTag escapes punctuation and whitespace so value is matched as a single tag.
func EscapeTag(value string) string {
	return tagEscaper.Replace(value)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	"?", "\\?",
	" ", "\\ ",
	"\t", "\\\t",
)
