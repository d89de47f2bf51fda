package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrIndexNotFound     = errors.New("db: index not found")
	ErrIndexExists       = errors.New("db: index already exists")
	ErrSearchUnsupported = errors.New("db: tag search not supported by backend")
)

// Op constants map to Valkey/Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
	OpHSetNX      = "HSETNX"
	OpHIncrBy     = "HINCRBY"
	OpExists      = "EXISTS"
	OpLPushTrim   = "LPUSH+LTRIM"
	OpLRange      = "LRANGE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
