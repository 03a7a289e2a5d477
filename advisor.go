package idxadvisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/idxadvisor/internal/db"
	"github.com/kailas-cloud/idxadvisor/internal/db/mongodb"
	"github.com/kailas-cloud/idxadvisor/internal/metrics"
	indexrepo "github.com/kailas-cloud/idxadvisor/internal/repository/index"
	profilerepo "github.com/kailas-cloud/idxadvisor/internal/repository/profile"
	serverrepo "github.com/kailas-cloud/idxadvisor/internal/repository/server"
	statsrepo "github.com/kailas-cloud/idxadvisor/internal/repository/stats"
	healthuc "github.com/kailas-cloud/idxadvisor/internal/usecase/health"
	monitoruc "github.com/kailas-cloud/idxadvisor/internal/usecase/monitor"
	provisionuc "github.com/kailas-cloud/idxadvisor/internal/usecase/provision"
	"github.com/kailas-cloud/idxadvisor/internal/usecase/recommend"
	slowqueryuc "github.com/kailas-cloud/idxadvisor/internal/usecase/slowquery"
	usageuc "github.com/kailas-cloud/idxadvisor/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type provisionUseCase interface {
	ProvisionAll(ctx context.Context, cat *Catalog) []Outcome
	LastRun() (Summary, bool)
}

type usageUseCase interface {
	Analyze(ctx context.Context) (map[string]UsageReport, error)
}

type classifierUseCase interface {
	Classify(records []QueryRecord) []Advisory
	ClassifyProfile(ctx context.Context, since time.Time, limit int64) ([]Advisory, error)
}

type monitorUseCase interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Advisor is the idxadvisor SDK entry point.
type Advisor struct {
	store      db.Store
	catalog    *Catalog
	provision  provisionUseCase
	usage      usageUseCase
	classifier classifierUseCase
	monitor    monitorUseCase
	health     healthUseCase
	obs        *observer
}

// New creates an Advisor and connects to the database.
func New(opts ...Option) (*Advisor, error) {
	cfg := &advisorConfig{
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.uri == "" || cfg.database == "" {
		return nil, errors.New("idxadvisor: connection string and database required (use WithMongoDB)")
	}
	if cfg.highMs < cfg.mediumMs {
		return nil, fmt.Errorf("idxadvisor: high threshold %dms below medium %dms", cfg.highMs, cfg.mediumMs)
	}

	ctx := context.Background()
	store, err := mongodb.NewStore(ctx, mongodb.Config{
		URI:      cfg.uri,
		Database: cfg.database,
		AppName:  cfg.appName,
	})
	if err != nil {
		return nil, fmt.Errorf("idxadvisor: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("idxadvisor: database not ready: %w", err)
	}

	adv, err := wireAdvisor(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return adv, nil
}

func wireAdvisor(store db.Store, cfg *advisorConfig) (*Advisor, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.registerMetrics {
		metrics.RegisterAdvisorMetrics()
	}
	obs, err := newObserver(logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	cat := cfg.catalog
	if cat == nil {
		cat = DefaultCatalog()
	}

	provisionSvc := provisionuc.New(indexrepo.New(store), logger).
		WithTimeout(cfg.opTimeout)
	usageSvc := usageuc.New(statsrepo.New(store), logger).
		WithConcurrency(cfg.concurrency).
		WithTimeout(cfg.opTimeout)
	classifier := slowqueryuc.New(logger).WithSource(profilerepo.New(store))
	if cfg.mediumMs > 0 || cfg.highMs > 0 {
		classifier = classifier.WithThresholds(slowqueryuc.Thresholds{MediumMs: cfg.mediumMs, HighMs: cfg.highMs})
	}
	monitorSvc := monitoruc.New(serverrepo.New(store), logger).
		WithInFlightThreshold(cfg.inFlightThreshold).
		WithTimeout(cfg.opTimeout)

	return &Advisor{
		store:      store,
		catalog:    cat,
		provision:  provisionSvc,
		usage:      usageSvc,
		classifier: classifier,
		monitor:    monitorSvc,
		health:     healthuc.New(store, provisionSvc),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (a *Advisor) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// Ping checks database connectivity.
func (a *Advisor) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { a.obs.observe("ping", start, err) }()

	if err = a.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Catalog returns the catalog applied by ProvisionAll.
func (a *Advisor) Catalog() *Catalog {
	return a.catalog
}

// ProvisionAll applies the configured catalog, one spec at a time, and
// returns one outcome per spec in catalog order.
func (a *Advisor) ProvisionAll(ctx context.Context) []Outcome {
	return a.ProvisionCatalog(ctx, a.catalog)
}

// ProvisionCatalog applies the given catalog instead of the configured one.
func (a *Advisor) ProvisionCatalog(ctx context.Context, cat *Catalog) []Outcome {
	start := time.Now()
	outcomes := a.provision.ProvisionAll(ctx, cat)

	var failed []error
	for _, o := range outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o.Err)
		}
	}
	a.obs.observe("provision", start, errors.Join(failed...))
	return outcomes
}

// LastRun returns the summary of the latest provisioning run.
func (a *Advisor) LastRun() (Summary, bool) {
	return a.provision.LastRun()
}

// Analyze returns one usage report per live collection.
func (a *Advisor) Analyze(ctx context.Context) (_ map[string]UsageReport, err error) {
	start := time.Now()
	defer func() { a.obs.observe("analyze", start, err) }()

	reports, err := a.usage.Analyze(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return reports, nil
}

// Classify turns slow query records into advisories.
func (a *Advisor) Classify(records []QueryRecord) []Advisory {
	start := time.Now()
	advisories := a.classifier.Classify(records)
	a.obs.observe("classify", start, nil)
	return advisories
}

// ClassifyProfile classifies slow queries recorded by the database profiler.
func (a *Advisor) ClassifyProfile(ctx context.Context, since time.Time, limit int64) (_ []Advisory, err error) {
	start := time.Now()
	defer func() { a.obs.observe("classify_profile", start, err) }()

	advisories, err := a.classifier.ClassifyProfile(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("classify profile: %w", err)
	}
	return advisories, nil
}

// Snapshot samples live operational state. Nothing is returned unless all
// three server reads succeed.
func (a *Advisor) Snapshot(ctx context.Context) (_ Snapshot, err error) {
	start := time.Now()
	defer func() { a.obs.observe("snapshot", start, err) }()

	snap, err := a.monitor.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// Recommend returns the suggested compound index field order for a query
// shape, equality fields first, then sort fields, then range fields.
func Recommend(filter, sort bson.D) []string {
	return recommend.Recommend(filter, sort)
}

// Plan is Recommend with direction and phase for each suggested field.
func Plan(filter, sort bson.D) []SuggestedKey {
	return recommend.Plan(filter, sort)
}
