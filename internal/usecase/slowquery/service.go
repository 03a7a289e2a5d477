package slowquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/query"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
	"github.com/kailas-cloud/idxadvisor/internal/usecase/recommend"
)

// Default severity thresholds in milliseconds.
const (
	DefaultMediumMs int64 = 500
	DefaultHighMs   int64 = 1000
)

// DefaultProfileLimit caps how many profiler entries one call reads.
const DefaultProfileLimit int64 = 100

// Thresholds are exclusive lower bounds: a query must take longer than
// MediumMs to be reported at all and longer than HighMs to be high.
type Thresholds struct {
	MediumMs int64
	HighMs   int64
}

// Validate checks threshold ordering.
func (t Thresholds) Validate() error {
	if t.MediumMs < 0 {
		return fmt.Errorf("%w: medium threshold must not be negative", domain.ErrInvalidRequest)
	}
	if t.HighMs < t.MediumMs {
		return fmt.Errorf("%w: high threshold %d below medium %d", domain.ErrInvalidRequest, t.HighMs, t.MediumMs)
	}
	return nil
}

// planFunc adapts the package-level recommender.
type planFunc func(filter, sort bson.D) []query.SuggestedKey

func (f planFunc) Plan(filter, sort bson.D) []query.SuggestedKey { return f(filter, sort) }

// Service turns slow query records into advisories.
type Service struct {
	recommender Recommender
	source      Source
	logger      *zap.Logger
	thresholds  Thresholds
	limit       int64
}

// New creates a classifier backed by the ESR recommender.
func New(logger *zap.Logger) *Service {
	return &Service{
		recommender: planFunc(recommend.Plan),
		logger:      logger,
		thresholds:  Thresholds{MediumMs: DefaultMediumMs, HighMs: DefaultHighMs},
		limit:       DefaultProfileLimit,
	}
}

// WithRecommender replaces the key order recommender.
func (s *Service) WithRecommender(r Recommender) *Service {
	if r != nil {
		s.recommender = r
	}
	return s
}

// WithSource enables ClassifyProfile.
func (s *Service) WithSource(src Source) *Service {
	s.source = src
	return s
}

// WithThresholds overrides the severity thresholds; invalid values are ignored.
func (s *Service) WithThresholds(t Thresholds) *Service {
	if t.Validate() == nil {
		s.thresholds = t
	}
	return s
}

// WithProfileLimit caps profiler reads.
func (s *Service) WithProfileLimit(n int64) *Service {
	if n > 0 {
		s.limit = n
	}
	return s
}

// Thresholds returns the active thresholds.
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Classify returns one advisory per record above the medium threshold, in
// input order. Records at or below it produce nothing.
func (s *Service) Classify(records []query.Record) []query.Advisory {
	out := make([]query.Advisory, 0, len(records))
	for _, r := range records {
		a, ok := s.classify(r)
		if !ok {
			continue
		}
		metrics.SlowQueryAdvisoriesTotal.WithLabelValues(a.Collection, string(a.Severity)).Inc()
		out = append(out, a)
	}
	return out
}

func (s *Service) classify(r query.Record) (query.Advisory, bool) {
	switch {
	case r.DurationMs > s.thresholds.HighMs:
		keys := s.recommender.Plan(r.Filter, r.Sort)
		order := make([]string, len(keys))
		for i, k := range keys {
			order[i] = k.Field
		}
		return query.Advisory{
			Severity:          query.SeverityHigh,
			Collection:        r.Collection,
			DurationMs:        r.DurationMs,
			SuggestedKeyOrder: order,
			SuggestedKeys:     keys,
			Rationale:         rationale(order),
		}, true
	case r.DurationMs > s.thresholds.MediumMs:
		return query.Advisory{
			Severity:   query.SeverityMedium,
			Collection: r.Collection,
			DurationMs: r.DurationMs,
			Rationale:  query.GenericRationale,
		}, true
	default:
		return query.Advisory{}, false
	}
}

func rationale(order []string) string {
	if len(order) == 0 {
		return query.GenericRationale
	}
	return fmt.Sprintf("create compound index on %v (equality, sort, range)", order)
}

// ClassifyProfile reads slow find operations recorded since the given time
// and classifies them. A zero limit uses the configured default.
func (s *Service) ClassifyProfile(ctx context.Context, since time.Time, limit int64) ([]query.Advisory, error) {
	if s.source == nil {
		return nil, errors.New("classify profile: no profiler source configured")
	}
	if limit <= 0 {
		limit = s.limit
	}

	records, err := s.source.SlowQueries(ctx, since, s.thresholds.MediumMs+1, limit)
	if err != nil {
		return nil, fmt.Errorf("classify profile: %w", err)
	}

	advisories := s.Classify(records)
	s.logger.Debug("Profiler classified",
		zap.Int("records", len(records)),
		zap.Int("advisories", len(advisories)),
	)
	return advisories, nil
}
