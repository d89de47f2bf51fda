package domain

import "errors"

var (
	// ErrConfig signals an empty or invalid configuration.
	ErrConfig = errors.New("invalid configuration")
	// ErrEmptyQuery signals a blank query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrIndexUnavailable signals a failed index search or schema operation.
	ErrIndexUnavailable = errors.New("route index unavailable")
	// ErrStoreUnavailable signals a failed statistics or history write.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrBatchTooLarge signals a batch above the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
