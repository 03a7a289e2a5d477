package idxadvisor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

// --- Provisioning ---

func TestAdvisor_ProvisionAll_UsesConfiguredCatalog(t *testing.T) {
	var got *Catalog
	mock := &mockProvisionUC{
		provisionFn: func(_ context.Context, cat *Catalog) []Outcome {
			got = cat
			return make([]Outcome, cat.Len())
		},
	}

	adv := testAdvisor(mock, nil, nil, nil)
	outcomes := adv.ProvisionAll(context.Background())
	if got != adv.Catalog() {
		t.Error("expected the configured catalog")
	}
	if len(outcomes) != adv.Catalog().Len() {
		t.Errorf("got %d outcomes, want %d", len(outcomes), adv.Catalog().Len())
	}
}

func TestAdvisor_ProvisionCatalog_Override(t *testing.T) {
	other, err := NewCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got *Catalog
	mock := &mockProvisionUC{
		provisionFn: func(_ context.Context, cat *Catalog) []Outcome {
			got = cat
			return nil
		},
	}

	testAdvisor(mock, nil, nil, nil).ProvisionCatalog(context.Background(), other)
	if got != other {
		t.Error("expected the override catalog")
	}
}

func TestAdvisor_LastRun(t *testing.T) {
	mock := &mockProvisionUC{
		lastRunFn: func() (Summary, bool) {
			return Summary{RunID: "r1", Created: 2}, true
		},
	}

	s, ok := testAdvisor(mock, nil, nil, nil).LastRun()
	if !ok || s.RunID != "r1" || s.Created != 2 {
		t.Errorf("unexpected summary: %+v %v", s, ok)
	}
}

// --- Usage ---

func TestAdvisor_Analyze(t *testing.T) {
	mock := &mockUsageUC{
		analyzeFn: func(_ context.Context) (map[string]UsageReport, error) {
			return map[string]UsageReport{"bookings": {Collection: "bookings"}}, nil
		},
	}

	reports, err := testAdvisor(nil, mock, nil, nil).Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reports["bookings"]; !ok {
		t.Errorf("missing bookings report: %v", reports)
	}
}

func TestAdvisor_Analyze_Error(t *testing.T) {
	mock := &mockUsageUC{
		analyzeFn: func(_ context.Context) (map[string]UsageReport, error) {
			return nil, fmt.Errorf("%w: timeout", ErrConnectivity)
		},
	}

	_, err := testAdvisor(nil, mock, nil, nil).Analyze(context.Background())
	if !errors.Is(err, ErrConnectivity) {
		t.Errorf("expected ErrConnectivity, got %v", err)
	}
}

// --- Classification ---

func TestAdvisor_Classify(t *testing.T) {
	mock := &mockClassifierUC{
		classifyFn: func(records []QueryRecord) []Advisory {
			out := make([]Advisory, len(records))
			for i, r := range records {
				out[i] = Advisory{Collection: r.Collection, Severity: SeverityMedium}
			}
			return out
		},
	}

	got := testAdvisor(nil, nil, mock, nil).Classify([]QueryRecord{{Collection: "trips", DurationMs: 700}})
	if len(got) != 1 || got[0].Collection != "trips" {
		t.Errorf("unexpected advisories: %+v", got)
	}
}

func TestAdvisor_ClassifyProfile(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &mockClassifierUC{
		classifyProfileFn: func(_ context.Context, s time.Time, limit int64) ([]Advisory, error) {
			if !s.Equal(since) || limit != 25 {
				t.Errorf("since=%v limit=%d", s, limit)
			}
			return []Advisory{{Collection: "bookings", Severity: SeverityHigh}}, nil
		},
	}

	got, err := testAdvisor(nil, nil, mock, nil).ClassifyProfile(context.Background(), since, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Severity != SeverityHigh {
		t.Errorf("unexpected advisories: %+v", got)
	}
}

func TestAdvisor_ClassifyProfile_Error(t *testing.T) {
	mock := &mockClassifierUC{
		classifyProfileFn: func(_ context.Context, _ time.Time, _ int64) ([]Advisory, error) {
			return nil, errors.New("profiler disabled")
		},
	}

	if _, err := testAdvisor(nil, nil, mock, nil).ClassifyProfile(context.Background(), time.Now(), 0); err == nil {
		t.Fatal("expected error")
	}
}

// --- Snapshot ---

func TestAdvisor_Snapshot_Error(t *testing.T) {
	mock := &mockMonitorUC{
		snapshotFn: func(_ context.Context) (Snapshot, error) {
			return Snapshot{}, fmt.Errorf("%w: serverStatus: not authorized", ErrSnapshotAssembly)
		},
	}

	_, err := testAdvisor(nil, nil, nil, mock).Snapshot(context.Background())
	if !errors.Is(err, ErrSnapshotAssembly) {
		t.Errorf("expected ErrSnapshotAssembly, got %v", err)
	}
}

// --- Observer ---

func TestAdvisor_ObserverMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(zap.NewNop(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adv := testAdvisor(nil, nil, nil, &mockMonitorUC{
		snapshotFn: func(_ context.Context) (Snapshot, error) {
			return Snapshot{}, ErrSnapshotAssembly
		},
	})
	adv.obs = obs

	_, _ = adv.Snapshot(context.Background())
	_, _ = adv.Snapshot(context.Background())

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("snapshot", "error")); got != 2 {
		t.Errorf("snapshot errors = %v, want 2", got)
	}
}

func TestNewObserver_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(zap.NewNop(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newObserver(zap.NewNop(), reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered counter to be reused")
	}
}
