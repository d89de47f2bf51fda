package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks that the route index is present.
type IndexChecker interface {
	Check(ctx context.Context) error
}
