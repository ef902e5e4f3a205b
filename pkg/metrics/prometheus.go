// Package metrics provides Prometheus metrics for the trainsync reconciliation service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the trainsync service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Run Metrics - One reconciliation pass end to end
	runsTotal       prometheus.Counter
	runFailures     prometheus.Counter
	runDuration     prometheus.Histogram
	telemetryLoaded prometheus.Counter

	// Row Metrics - What happened to ledger rows during a run
	rowsPlanned  prometheus.Counter
	rowsLinked   prometheus.Counter
	rowsPromoted prometheus.Counter
	rowsSkipped  *prometheus.CounterVec

	// Ledger State Metrics
	claimedIDs prometheus.Gauge
	ledgerRows prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trainsync",
		subsystem:        "reconcile",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of reconciliation runs completed",
	})

	m.runFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_failures_total",
		Help:      "Total number of reconciliation runs that aborted with an error",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of reconciliation run duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.telemetryLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "telemetry_records_total",
		Help:      "Total number of telemetry records loaded from the source",
	})

	m.rowsPlanned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_planned_total",
		Help:      "Total number of new planned rows appended to the ledger",
	})

	m.rowsLinked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_linked_total",
		Help:      "Total number of pending rows linked to recorded sessions",
	})

	m.rowsPromoted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_promoted_total",
		Help:      "Total number of unplanned sessions promoted to ledger rows",
	})

	m.rowsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rows_skipped_total",
			Help:      "Total number of sessions or rows skipped, by reason",
		},
		[]string{"reason"},
	)

	m.claimedIDs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "claimed_ids",
		Help:      "Number of activity identifiers consumed by the ledger",
	})

	m.ledgerRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_rows",
		Help:      "Number of rows in the ledger after the last run",
	})
}

// RecordRun increments the completed runs counter.
func RecordRun() {
	globalManager.runsTotal.Inc()
}

// RecordRunFailure increments the failed runs counter.
func RecordRunFailure() {
	globalManager.runFailures.Inc()
}

// RecordRunDuration records the duration of a reconciliation run in seconds.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// AddTelemetryRecords adds to the loaded telemetry records counter.
func AddTelemetryRecords(n int) {
	globalManager.telemetryLoaded.Add(float64(n))
}

// AddRowsPlanned adds to the planned rows counter.
func AddRowsPlanned(n int) {
	globalManager.rowsPlanned.Add(float64(n))
}

// AddRowsLinked adds to the linked rows counter.
func AddRowsLinked(n int) {
	globalManager.rowsLinked.Add(float64(n))
}

// AddRowsPromoted adds to the promoted rows counter.
func AddRowsPromoted(n int) {
	globalManager.rowsPromoted.Add(float64(n))
}

// RecordRowSkipped increments the skipped counter for the given reason.
func RecordRowSkipped(reason string) {
	globalManager.rowsSkipped.WithLabelValues(reason).Inc()
}

// UpdateClaimedIDs sets the number of consumed activity identifiers.
func UpdateClaimedIDs(count int) {
	globalManager.claimedIDs.Set(float64(count))
}

// UpdateLedgerRows sets the current ledger row count.
func UpdateLedgerRows(count int) {
	globalManager.ledgerRows.Set(float64(count))
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
