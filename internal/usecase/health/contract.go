package health

import (
	"context"

	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProvisionReporter exposes the latest provisioning run.
type ProvisionReporter interface {
	LastRun() (domprov.Summary, bool)
}
