package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

// Defaults for the monitor.
const (
	DefaultInFlightThreshold = 100 * time.Millisecond
	DefaultOpTimeout         = 30 * time.Second
)

// Connection utilization levels for alerts.
const (
	warnUtilization     = 0.80
	criticalUtilization = 0.90
)

// Alert codes.
const (
	AlertConnectionsHigh     = "connections_high"
	AlertConnectionsCritical = "connections_critical"
	AlertSlowInFlightOps     = "slow_in_flight_ops"
)

// Service samples operational state.
type Service struct {
	repo      Repository
	logger    *zap.Logger
	threshold time.Duration
	timeout   time.Duration
	now       func() time.Time
}

// New creates a performance monitor.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger,
		threshold: DefaultInFlightThreshold,
		timeout:   DefaultOpTimeout,
		now:       time.Now,
	}
}

// WithInFlightThreshold sets the running time above which an op is slow.
func (s *Service) WithInFlightThreshold(d time.Duration) *Service {
	if d > 0 {
		s.threshold = d
	}
	return s
}

// WithTimeout bounds the whole snapshot.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Snapshot issues the three admin reads concurrently. If any of them fails
// the snapshot is not assembled and no partial record is returned.
func (s *Service) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		ops     []snapshot.Op
		storage snapshot.Storage
		server  snapshot.Server
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ops, err = s.repo.InFlightOps(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		storage, err = s.repo.Storage(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		server, err = s.repo.Server(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.SnapshotFailuresTotal.Inc()
		s.logger.Error("Snapshot assembly failed", zap.Error(err))
		return snapshot.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrSnapshotAssembly, err)
	}

	snap := snapshot.Snapshot{
		SampledAt:       s.now().UTC(),
		InFlightOpCount: len(ops),
		SlowInFlightOps: s.slow(ops),
		Storage:         storage,
		Server:          server,
	}
	snap.Alerts = Assess(snap)
	s.record(snap)
	return snap, nil
}

func (s *Service) slow(ops []snapshot.Op) []snapshot.Op {
	limit := s.threshold.Milliseconds()
	out := make([]snapshot.Op, 0)
	for _, op := range ops {
		if op.RunningMs > limit {
			out = append(out, op)
		}
	}
	return out
}

func (s *Service) record(snap snapshot.Snapshot) {
	metrics.SnapshotInFlightOps.Set(float64(snap.InFlightOpCount))
	metrics.SnapshotSlowOps.Set(float64(len(snap.SlowInFlightOps)))
	metrics.SnapshotConnections.WithLabelValues("current").Set(float64(snap.Connections.Current))
	metrics.SnapshotConnections.WithLabelValues("available").Set(float64(snap.Connections.Available))

	for _, a := range snap.Alerts {
		s.logger.Warn("Snapshot alert",
			zap.String("level", string(a.Level)),
			zap.String("code", a.Code),
			zap.String("message", a.Message),
		)
	}
}

// Assess derives alerts from a snapshot.
func Assess(snap snapshot.Snapshot) []snapshot.Alert {
	alerts := make([]snapshot.Alert, 0)

	u := snap.Connections.Utilization()
	switch {
	case u > criticalUtilization:
		alerts = append(alerts, snapshot.Alert{
			Level:   snapshot.LevelCritical,
			Code:    AlertConnectionsCritical,
			Message: fmt.Sprintf("connection utilization %.0f%%", u*100),
		})
	case u > warnUtilization:
		alerts = append(alerts, snapshot.Alert{
			Level:   snapshot.LevelWarning,
			Code:    AlertConnectionsHigh,
			Message: fmt.Sprintf("connection utilization %.0f%%", u*100),
		})
	}

	if n := len(snap.SlowInFlightOps); n > 0 {
		alerts = append(alerts, snapshot.Alert{
			Level:   snapshot.LevelWarning,
			Code:    AlertSlowInFlightOps,
			Message: fmt.Sprintf("%d slow operations in flight", n),
		})
	}
	return alerts
}
