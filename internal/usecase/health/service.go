package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store is reachable but the last provisioning run had failures.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
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
	db        DBPinger
	provision ProvisionReporter
}

// New creates a Service. provision can be nil.
func New(db DBPinger, provision ProvisionReporter) *Service {
	return &Service{db: db, provision: provision}
}

// Check runs health checks against all components. The provisioning check
// is present only once a run has completed.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.provision != nil {
		if last, ok := s.provision.LastRun(); ok {
			if last.OK() {
				checks["provisioning"] = CheckOK
			} else {
				checks["provisioning"] = CheckError
				if status == Healthy {
					status = Degraded
				}
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
