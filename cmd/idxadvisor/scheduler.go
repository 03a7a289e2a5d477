package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain/snapshot"
	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
)

type usageAnalyzer interface {
	Analyze(ctx context.Context) (map[string]domusage.Report, error)
}

type snapshotter interface {
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
}

// scheduler periodically runs the usage analysis and takes a snapshot,
// logging the findings. Metrics are updated by the services themselves.
type scheduler struct {
	usage   usageAnalyzer
	monitor snapshotter
	logger  *zap.Logger
}

func (s *scheduler) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *scheduler) tick(ctx context.Context) {
	reports, err := s.usage.Analyze(ctx)
	if err != nil {
		s.logger.Error("Scheduled usage analysis failed", zap.Error(err))
	} else {
		unused := domusage.UnusedIndexes(reports)
		for _, u := range unused {
			s.logger.Info("Unused index",
				zap.String("collection", u.Collection),
				zap.String("index", u.Index),
				zap.Time("since", u.Since),
			)
		}
		s.logger.Info("Scheduled usage analysis completed",
			zap.Int("collections", len(reports)),
			zap.Int("unused_indexes", len(unused)),
		)
	}

	snap, err := s.monitor.Snapshot(ctx)
	if err != nil {
		// already logged and counted by the monitor
		return
	}
	s.logger.Info("Snapshot taken",
		zap.Int("in_flight_ops", snap.InFlightOpCount),
		zap.Int("slow_in_flight_ops", len(snap.SlowInFlightOps)),
		zap.Int64("connections", snap.Connections.Current),
		zap.Int("alerts", len(snap.Alerts)),
	)
}
