package idxadvisor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Advisor.
type Option interface {
	apply(*advisorConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*advisorConfig)

func (f optionFunc) apply(c *advisorConfig) { f(c) }

type advisorConfig struct {
	uri      string
	database string
	appName  string

	catalog *Catalog

	mediumMs          int64
	highMs            int64
	inFlightThreshold time.Duration
	opTimeout         time.Duration
	concurrency       int
	readinessTimeout  time.Duration

	logger          *zap.Logger
	registerMetrics bool
	metricsReg      prometheus.Registerer
}

// WithMongoDB sets the connection string and the database to manage.
func WithMongoDB(uri, database string) Option {
	return optionFunc(func(c *advisorConfig) {
		c.uri = uri
		c.database = database
	})
}

// WithAppName sets the application name reported to the server.
func WithAppName(name string) Option {
	return optionFunc(func(c *advisorConfig) {
		c.appName = name
	})
}

// WithCatalog replaces the built-in storefront catalog.
func WithCatalog(cat *Catalog) Option {
	return optionFunc(func(c *advisorConfig) {
		c.catalog = cat
	})
}

// WithThresholds sets the slow query thresholds in milliseconds.
// Defaults: medium=500, high=1000.
func WithThresholds(mediumMs, highMs int64) Option {
	return optionFunc(func(c *advisorConfig) {
		c.mediumMs = mediumMs
		c.highMs = highMs
	})
}

// WithInFlightThreshold sets the running time above which an in-flight
// operation counts as slow in snapshots. Default: 100ms.
func WithInFlightThreshold(d time.Duration) Option {
	return optionFunc(func(c *advisorConfig) {
		c.inFlightThreshold = d
	})
}

// WithOpTimeout bounds each index operation and statistics read. Default: 30s.
func WithOpTimeout(d time.Duration) Option {
	return optionFunc(func(c *advisorConfig) {
		c.opTimeout = d
	})
}

// WithAnalyzeConcurrency bounds how many collections are analyzed at once. Default: 4.
func WithAnalyzeConcurrency(n int) Option {
	return optionFunc(func(c *advisorConfig) {
		c.concurrency = n
	})
}

// WithReadinessTimeout sets how long New waits for the server. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *advisorConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *advisorConfig) {
		c.logger = l
	})
}

// WithMetrics registers the provisioning, usage, slow query and snapshot
// metrics with the default Prometheus registry.
func WithMetrics() Option {
	return optionFunc(func(c *advisorConfig) {
		c.registerMetrics = true
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *advisorConfig) {
		c.metricsReg = reg
	})
}
