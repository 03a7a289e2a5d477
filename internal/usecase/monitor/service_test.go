package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAdvisorMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockRepo struct {
	inFlightFn func(ctx context.Context) ([]snapshot.Op, error)
	storageFn  func(ctx context.Context) (snapshot.Storage, error)
	serverFn   func(ctx context.Context) (snapshot.Server, error)
}

func (m *mockRepo) InFlightOps(ctx context.Context) ([]snapshot.Op, error) {
	if m.inFlightFn != nil {
		return m.inFlightFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Storage(ctx context.Context) (snapshot.Storage, error) {
	if m.storageFn != nil {
		return m.storageFn(ctx)
	}
	return snapshot.Storage{}, nil
}

func (m *mockRepo) Server(ctx context.Context) (snapshot.Server, error) {
	if m.serverFn != nil {
		return m.serverFn(ctx)
	}
	return snapshot.Server{}, nil
}

func healthyRepo() *mockRepo {
	return &mockRepo{
		inFlightFn: func(_ context.Context) ([]snapshot.Op, error) {
			return []snapshot.Op{
				{OpID: "1", Type: "query", Namespace: "app.bookings", RunningMs: 5},
				{OpID: "2", Type: "query", Namespace: "app.trips", RunningMs: 100},
				{OpID: "3", Type: "command", Namespace: "app.reviews", RunningMs: 101},
			}, nil
		},
		storageFn: func(_ context.Context) (snapshot.Storage, error) {
			return snapshot.Storage{Collections: 5, Objects: 1200, DataBytes: 4096, IndexCount: 20}, nil
		},
		serverFn: func(_ context.Context) (snapshot.Server, error) {
			return snapshot.Server{
				Version:       "7.0.4",
				UptimeSeconds: 3600,
				Connections:   snapshot.Connections{Current: 10, Available: 90},
				Memory:        snapshot.Memory{ResidentMB: 512, VirtualMB: 2048},
			}, nil
		},
	}
}

// --- Snapshot ---

func TestSnapshot_Assembled(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(healthyRepo(), zap.NewNop())
	svc.now = func() time.Time { return fixed }

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.SampledAt.Equal(fixed) {
		t.Errorf("SampledAt = %v, want %v", snap.SampledAt, fixed)
	}
	if snap.InFlightOpCount != 3 {
		t.Errorf("InFlightOpCount = %d, want 3", snap.InFlightOpCount)
	}
	if len(snap.SlowInFlightOps) != 1 || snap.SlowInFlightOps[0].OpID != "3" {
		t.Errorf("SlowInFlightOps = %+v, want only op 3", snap.SlowInFlightOps)
	}
	if snap.Collections != 5 || snap.IndexCount != 20 {
		t.Errorf("storage not copied: %+v", snap.Storage)
	}
	if snap.Version != "7.0.4" || snap.Memory.ResidentMB != 512 {
		t.Errorf("server not copied: %+v", snap.Server)
	}
	if len(snap.Alerts) != 1 || snap.Alerts[0].Code != AlertSlowInFlightOps {
		t.Errorf("Alerts = %+v, want one slow op alert", snap.Alerts)
	}
}

func TestSnapshot_ServerStatusFails(t *testing.T) {
	repo := healthyRepo()
	repo.serverFn = func(_ context.Context) (snapshot.Server, error) {
		return snapshot.Server{}, fmt.Errorf("server status: %w", domain.ErrConnectivity)
	}

	snap, err := New(repo, zap.NewNop()).Snapshot(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrSnapshotAssembly) {
		t.Errorf("expected ErrSnapshotAssembly, got %v", err)
	}
	if !errors.Is(err, domain.ErrConnectivity) {
		t.Errorf("expected cause to be kept, got %v", err)
	}
	if snap.InFlightOpCount != 0 || snap.Collections != 0 || !snap.SampledAt.IsZero() || snap.SlowInFlightOps != nil {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestSnapshot_EachReadFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		mutate func(r *mockRepo)
	}{
		{"current op", func(r *mockRepo) {
			r.inFlightFn = func(_ context.Context) ([]snapshot.Op, error) { return nil, boom }
		}},
		{"db stats", func(r *mockRepo) {
			r.storageFn = func(_ context.Context) (snapshot.Storage, error) { return snapshot.Storage{}, boom }
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := healthyRepo()
			tc.mutate(repo)
			_, err := New(repo, zap.NewNop()).Snapshot(context.Background())
			if !errors.Is(err, domain.ErrSnapshotAssembly) || !errors.Is(err, boom) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSnapshot_Threshold(t *testing.T) {
	snap, err := New(healthyRepo(), zap.NewNop()).
		WithInFlightThreshold(time.Millisecond).
		Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.SlowInFlightOps) != 3 {
		t.Errorf("SlowInFlightOps = %d, want 3", len(snap.SlowInFlightOps))
	}
}

// --- Assess ---

func TestAssess_Connections(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		avail   int64
		want    []string
	}{
		{"idle", 10, 90, nil},
		{"exactly 80%", 80, 20, nil},
		{"warning", 85, 15, []string{AlertConnectionsHigh}},
		{"exactly 90%", 90, 10, []string{AlertConnectionsHigh}},
		{"critical", 95, 5, []string{AlertConnectionsCritical}},
		{"unknown", 0, 0, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot.Snapshot{}
			snap.Connections = snapshot.Connections{Current: tc.current, Available: tc.avail}
			alerts := Assess(snap)
			if len(alerts) != len(tc.want) {
				t.Fatalf("alerts = %+v, want codes %v", alerts, tc.want)
			}
			for i, code := range tc.want {
				if alerts[i].Code != code {
					t.Errorf("alert[%d] = %q, want %q", i, alerts[i].Code, code)
				}
			}
		})
	}
}

func TestAssess_CriticalLevel(t *testing.T) {
	snap := snapshot.Snapshot{SlowInFlightOps: []snapshot.Op{{OpID: "9", RunningMs: 400}}}
	snap.Connections = snapshot.Connections{Current: 99, Available: 1}

	alerts := Assess(snap)
	if len(alerts) != 2 {
		t.Fatalf("alerts = %+v, want 2", alerts)
	}
	if alerts[0].Level != snapshot.LevelCritical {
		t.Errorf("level = %q, want critical", alerts[0].Level)
	}
	if alerts[1].Level != snapshot.LevelWarning {
		t.Errorf("level = %q, want warning", alerts[1].Level)
	}
}
