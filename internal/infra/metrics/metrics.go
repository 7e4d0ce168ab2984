// Package metrics exposes the dashboard's prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qualitypulse"

type Metrics struct {
	EntriesWritten        *prometheus.CounterVec
	ReconcileDuration     prometheus.Histogram
	PendingItems          *prometheus.GaugeVec
	PlanningFetchFailures prometheus.Counter
	RejectionRate         *prometheus.GaugeVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production so promhttp.Handler serves them.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_written_total",
			Help:      "Batch entries written, by operation.",
		}, []string{"op"}),
		ReconcileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent building the pending production list.",
			Buckets:   prometheus.DefBuckets,
		}),
		PendingItems: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_items",
			Help:      "Pending production items, by status.",
		}, []string{"status"}),
		PlanningFetchFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planning_fetch_failures_total",
			Help:      "Failed reads of the planning source.",
		}),
		RejectionRate: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rejection_rate",
			Help:      "Last computed overall rejection rate in percent, by period.",
		}, []string{"mode"}),
	}
}

func (m *Metrics) EntryWritten(op string) { m.AddEntriesWritten(op, 1) }

func (m *Metrics) AddEntriesWritten(op string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EntriesWritten.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) ObserveReconcile(d time.Duration) {
	if m == nil {
		return
	}
	m.ReconcileDuration.Observe(d.Seconds())
}

// SetPending replaces the per-status gauges.
func (m *Metrics) SetPending(byStatus map[string]int) {
	if m == nil {
		return
	}
	m.PendingItems.Reset()
	for status, n := range byStatus {
		m.PendingItems.WithLabelValues(status).Set(float64(n))
	}
}

func (m *Metrics) PlanningFetchFailed() {
	if m == nil {
		return
	}
	m.PlanningFetchFailures.Inc()
}

func (m *Metrics) SetRejectionRate(mode string, rate float64) {
	if m == nil {
		return
	}
	m.RejectionRate.WithLabelValues(mode).Set(rate)
}
