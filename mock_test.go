package idxadvisor

import (
	"context"
	"time"
)

// --- provisionUseCase mock ---

type mockProvisionUC struct {
	provisionFn func(ctx context.Context, cat *Catalog) []Outcome
	lastRunFn   func() (Summary, bool)
}

func (m *mockProvisionUC) ProvisionAll(ctx context.Context, cat *Catalog) []Outcome {
	return m.provisionFn(ctx, cat)
}

func (m *mockProvisionUC) LastRun() (Summary, bool) {
	return m.lastRunFn()
}

// --- usageUseCase mock ---

type mockUsageUC struct {
	analyzeFn func(ctx context.Context) (map[string]UsageReport, error)
}

func (m *mockUsageUC) Analyze(ctx context.Context) (map[string]UsageReport, error) {
	return m.analyzeFn(ctx)
}

// --- classifierUseCase mock ---

type mockClassifierUC struct {
	classifyFn        func(records []QueryRecord) []Advisory
	classifyProfileFn func(ctx context.Context, since time.Time, limit int64) ([]Advisory, error)
}

func (m *mockClassifierUC) Classify(records []QueryRecord) []Advisory {
	return m.classifyFn(records)
}

func (m *mockClassifierUC) ClassifyProfile(ctx context.Context, since time.Time, limit int64) ([]Advisory, error) {
	return m.classifyProfileFn(ctx, since, limit)
}

// --- monitorUseCase mock ---

type mockMonitorUC struct {
	snapshotFn func(ctx context.Context) (Snapshot, error)
}

func (m *mockMonitorUC) Snapshot(ctx context.Context) (Snapshot, error) {
	return m.snapshotFn(ctx)
}

// --- helpers ---

func testAdvisor(
	provision provisionUseCase,
	usage usageUseCase,
	classifier classifierUseCase,
	monitor monitorUseCase,
) *Advisor {
	return &Advisor{
		catalog:    DefaultCatalog(),
		provision:  provision,
		usage:      usage,
		classifier: classifier,
		monitor:    monitor,
	}
}
