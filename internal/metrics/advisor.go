package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advisor Prometheus metrics.
var (
	ProvisionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idxadvisor",
			Subsystem: "provision",
			Name:      "outcomes_total",
			Help:      "Index provisioning outcomes",
		},
		[]string{"collection", "status"},
	)

	ProvisionRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "idxadvisor",
			Subsystem: "provision",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full catalog provisioning run",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	UnusedIndexes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "idxadvisor",
			Subsystem: "usage",
			Name:      "unused_indexes",
			Help:      "Indexes with zero recorded accesses since the last server restart",
		},
		[]string{"collection"},
	)

	StatsUnavailableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idxadvisor",
			Subsystem: "usage",
			Name:      "stats_unavailable_total",
			Help:      "Collections whose statistics could not be read",
		},
		[]string{"collection"},
	)

	SlowQueryAdvisoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idxadvisor",
			Subsystem: "slowquery",
			Name:      "advisories_total",
			Help:      "Slow query advisories by severity",
		},
		[]string{"collection", "severity"},
	)

	StoreCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idxadvisor",
			Subsystem: "store",
			Name:      "command_duration_seconds",
			Help:      "Database command duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"command", "status"},
	)

	SnapshotInFlightOps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "idxadvisor",
			Subsystem: "snapshot",
			Name:      "in_flight_ops",
			Help:      "Operations in flight at the last snapshot",
		},
	)

	SnapshotSlowOps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "idxadvisor",
			Subsystem: "snapshot",
			Name:      "slow_in_flight_ops",
			Help:      "In-flight operations over the slow threshold at the last snapshot",
		},
	)

	SnapshotConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "idxadvisor",
			Subsystem: "snapshot",
			Name:      "connections",
			Help:      "Server connections at the last snapshot",
		},
		[]string{"state"}, // "current" / "available"
	)

	SnapshotFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "idxadvisor",
			Subsystem: "snapshot",
			Name:      "failures_total",
			Help:      "Snapshots that could not be assembled",
		},
	)
)

var advisorMetricsRegistered bool

// RegisterAdvisorMetrics registers Prometheus advisor metrics. Must be called once from main.
func RegisterAdvisorMetrics() {
	if advisorMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProvisionOutcomesTotal)
	prometheus.MustRegister(ProvisionRunDuration)
	prometheus.MustRegister(UnusedIndexes)
	prometheus.MustRegister(StatsUnavailableTotal)
	prometheus.MustRegister(SlowQueryAdvisoriesTotal)
	prometheus.MustRegister(StoreCommandDuration)
	prometheus.MustRegister(SnapshotInFlightOps)
	prometheus.MustRegister(SnapshotSlowOps)
	prometheus.MustRegister(SnapshotConnections)
	prometheus.MustRegister(SnapshotFailuresTotal)
	advisorMetricsRegistered = true
}
