package semrouter

import "github.com/kailas-cloud/semrouter/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfig           = domain.ErrConfig
	ErrEmptyQuery       = domain.ErrEmptyQuery
	ErrBatchTooLarge    = domain.ErrBatchTooLarge
	ErrStoreUnavailable = domain.ErrStoreUnavailable
	ErrIndexUnavailable = domain.ErrIndexUnavailable
)
