package provision

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/domain"
	"github.com/kailas-cloud/idxadvisor/internal/domain/catalog"
	domprov "github.com/kailas-cloud/idxadvisor/internal/domain/provision"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
)

// DefaultOpTimeout bounds a single index operation.
const DefaultOpTimeout = 30 * time.Second

// Service applies a catalog to the store, one spec at a time.
type Service struct {
	ensurer Ensurer
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu   sync.RWMutex
	last *domprov.Summary
}

// New creates a provisioning service.
func New(ensurer Ensurer, logger *zap.Logger) *Service {
	return &Service{
		ensurer: ensurer,
		logger:  logger,
		timeout: DefaultOpTimeout,
		now:     time.Now,
	}
}

// WithTimeout configures the per-spec timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// ProvisionAll applies every spec of the catalog in order and returns one
// outcome per spec. A failed spec never stops the run.
func (s *Service) ProvisionAll(ctx context.Context, cat *catalog.Catalog) []domprov.Outcome {
	runID := uuid.NewString()
	started := s.now()
	log := s.logger.With(zap.String("run_id", runID))

	specs := cat.Specs()
	outcomes := make([]domprov.Outcome, len(specs))
	log.Info("Provisioning started", zap.Int("specs", len(specs)))

	for i, spec := range specs {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		t0 := time.Now()
		status, err := s.ensurer.Ensure(opCtx, spec)
		cancel()

		o := domprov.Outcome{Spec: spec, Status: status, Duration: time.Since(t0)}
		fields := []zap.Field{
			zap.String("collection", spec.Collection()),
			zap.String("index", spec.Name()),
			zap.Duration("duration", o.Duration),
		}

		switch {
		case status == domprov.StatusCreated:
			log.Info("Index created", fields...)
		case status == domprov.StatusAlreadyExists:
			if errors.Is(err, domain.ErrBenignDuplicate) {
				fields = append(fields, zap.NamedError("detail", err))
			}
			log.Debug("Index already exists", fields...)
		default:
			if err == nil {
				err = errors.New("unknown provisioning status " + string(status))
			}
			o.Status = domprov.StatusFailed
			o.Err = err
			log.Error("Index provisioning failed", append(fields, zap.Error(err))...)
		}

		metrics.ProvisionOutcomesTotal.WithLabelValues(spec.Collection(), string(o.Status)).Inc()
		outcomes[i] = o
	}

	summary := domprov.Summarize(runID, started, time.Since(started), outcomes)
	metrics.ProvisionRunDuration.Observe(summary.Duration.Seconds())
	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()

	log.Info("Provisioning finished",
		zap.Int("created", summary.Created),
		zap.Int("already_exists", summary.AlreadyExists),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
	return outcomes
}

// LastRun returns the summary of the latest run, if any.
func (s *Service) LastRun() (domprov.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domprov.Summary{}, false
	}
	return *s.last, true
}
