// Package metrics holds the daemon's Prometheus metrics, one field per
// observable state named in the spec's error-handling and testable-
// properties sections (capture overflow, batch counts, retention counts,
// integrity issues).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the daemon registers.
type Metrics struct {
	CaptureOverflowed  prometheus.Counter
	CaptureClosedDrops prometheus.Counter
	CaptureDegraded    prometheus.Gauge

	BatchesEmitted   prometheus.Counter
	BatchEventsTotal prometheus.Counter
	BatchSize        prometheus.Histogram

	StoreWriteFailures prometheus.Counter
	ChainAppendFailures prometheus.Counter
	ChainLength        prometheus.Gauge

	IntegrityIssuesTotal   *prometheus.CounterVec
	IntegrityLastCheckUnix prometheus.Gauge

	RetentionDeletedTotal  prometheus.Counter
	RetentionHeldTotal     prometheus.Counter
	RetentionSkippedTotal  prometheus.Counter
	RetentionPassFailures  prometheus.Counter
}

// New creates and registers every collector against the default registry.
func New() *Metrics {
	return &Metrics{
		CaptureOverflowed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_capture_overflowed_total",
			Help: "Events dropped because the capture buffer was full.",
		}),
		CaptureClosedDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_capture_closed_drops_total",
			Help: "Events dropped because capture had already been closed.",
		}),
		CaptureDegraded: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auditlog_capture_degraded",
			Help: "1 when capture has observed persistent drops, 0 otherwise.",
		}),
		BatchesEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_batcher_batches_emitted_total",
			Help: "Batches emitted by the batcher.",
		}),
		BatchEventsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_batcher_events_total",
			Help: "Events coalesced into emitted batches.",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditlog_batcher_batch_size",
			Help:    "Size distribution of emitted batches.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		StoreWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_store_write_failures_total",
			Help: "Indexed store writes that returned an error.",
		}),
		ChainAppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_chainlog_append_failures_total",
			Help: "Chain log appends that returned an error.",
		}),
		ChainLength: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auditlog_chainlog_length",
			Help: "Current number of entries in the chain log.",
		}),
		IntegrityIssuesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auditlog_integrity_issues_total",
			Help: "Integrity issues found, labeled by severity.",
		}, []string{"severity"}),
		IntegrityLastCheckUnix: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "auditlog_integrity_last_check_unix",
			Help: "Unix timestamp of the last completed integrity check.",
		}),
		RetentionDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_retention_deleted_total",
			Help: "Rows deleted by the retention engine.",
		}),
		RetentionHeldTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_retention_held_total",
			Help: "Rows classified as held by the retention engine.",
		}),
		RetentionSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_retention_skipped_total",
			Help: "Rows classified as not-yet-eligible by the retention engine.",
		}),
		RetentionPassFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "auditlog_retention_pass_failures_total",
			Help: "Retention enforcement passes that returned an error.",
		}),
	}
}

// ObserveClassification records one enforcement pass's outcome counts.
func (m *Metrics) ObserveClassification(deleted, held, skipped int) {
	m.RetentionDeletedTotal.Add(float64(deleted))
	m.RetentionHeldTotal.Add(float64(held))
	m.RetentionSkippedTotal.Add(float64(skipped))
}

// ObserveIntegrityReport increments issue counters by severity.
func (m *Metrics) ObserveIntegrityReport(corrupted, broken int) {
	if corrupted > 0 {
		m.IntegrityIssuesTotal.WithLabelValues("warning").Add(float64(corrupted))
	}
	if broken > 0 {
		m.IntegrityIssuesTotal.WithLabelValues("critical").Add(float64(broken))
	}
}
