package chi

import (
	"context"
	"time"

	"github.com/kailas-cloud/idxadvisor/internal/domain/catalog"
	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
	healthuc "github.com/kailas-cloud/idxadvisor/internal/usecase/health"
)

// Provisioner applies an index catalog.
type Provisioner interface {
	ProvisionAll(ctx context.Context, cat *catalog.Catalog) []domprov.Outcome
	LastRun() (domprov.Summary, bool)
}

// Analyzer reports index usage per collection.
type Analyzer interface {
	Analyze(ctx context.Context) (map[string]domusage.Report, error)
}

// Classifier turns slow queries into advisories.
type Classifier interface {
	Classify(records []query.Record) []query.Advisory
	ClassifyProfile(ctx context.Context, since time.Time, limit int64) ([]query.Advisory, error)
}

// Monitor samples operational state.
type Monitor interface {
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
