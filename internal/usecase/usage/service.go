package usage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domusage "github.com/kailas-cloud/idxadvisor/internal/domain/usage"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

// Defaults for the analyzer.
const (
	DefaultConcurrency = 4
	DefaultOpTimeout   = 30 * time.Second
)

// Service harvests index usage for every live collection.
type Service struct {
	repo        Repository
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration
}

// New creates a usage analyzer.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		logger:      logger,
		concurrency: DefaultConcurrency,
		timeout:     DefaultOpTimeout,
	}
}

// WithConcurrency bounds how many collections are analyzed at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithTimeout configures the per-collection timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Analyze returns one report per live collection. A collection whose statistics
// fail gets a flagged report; only failing to list collections fails the call.
func (s *Service) Analyze(ctx context.Context) (map[string]domusage.Report, error) {
	names, err := s.repo.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze usage: %w", err)
	}

	reports := make([]domusage.Report, len(names))
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			reports[i] = s.analyzeOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]domusage.Report, len(reports))
	for _, r := range reports {
		out[r.Collection] = r
	}
	s.record(out)
	return out, nil
}

func (s *Service) analyzeOne(ctx context.Context, name string) domusage.Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r, err := s.repo.CollectionUsage(ctx, name)
	if err != nil {
		s.logger.Warn("Collection statistics unavailable",
			zap.String("collection", name),
			zap.Error(err),
		)
		metrics.StatsUnavailableTotal.WithLabelValues(name).Inc()
		return domusage.Unavailable(name, err)
	}
	r.Collection = name
	return r
}

func (s *Service) record(reports map[string]domusage.Report) {
	unused := make(map[string]int, len(reports))
	for coll, r := range reports {
		if !r.StatsUnavailable {
			unused[coll] = 0
		}
	}
	for _, u := range domusage.UnusedIndexes(reports) {
		unused[u.Collection]++
	}
	for coll, n := range unused {
		metrics.UnusedIndexes.WithLabelValues(coll).Set(float64(n))
	}
	s.logger.Debug("Usage analysis completed", zap.Int("collections", len(reports)))
}
