package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the router works but an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates decisions can no longer be recorded.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexChecker
}

// New creates a Service. index can be nil when the index path is off.
func New(db DBPinger, index IndexChecker) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against all components. A failing database makes
// the report Unhealthy; a missing index only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.index != nil {
		if err := s.index.Check(ctx); err != nil {
			checks["route_index"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["route_index"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
