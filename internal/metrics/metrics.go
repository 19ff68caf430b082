// Package metrics exposes the Prometheus metrics the enforcement core and
// approval gate publish.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus instrument cherub records. Pass to the
// components that need to record against it; nothing here is global
// state, so tests can register against a fresh registry each time.
type Metrics struct {
	DecisionsTotal     *prometheus.CounterVec
	DecisionDuration   *prometheus.HistogramVec
	ApprovalsPending   prometheus.Gauge
	ApprovalResolution *prometheus.CounterVec
	AuditDropsTotal    prometheus.Counter
}

// NewMetrics creates and registers every instrument with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cherub",
				Name:      "decisions_total",
				Help:      "Total enforcement decisions by verdict",
			},
			[]string{"tool", "verdict"}, // verdict=allow/reject/escalate_approved/escalate_denied/escalate_timed_out
		),
		DecisionDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cherub",
				Name:      "decision_duration_seconds",
				Help:      "Time spent evaluating a proposal, including any approval wait",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ApprovalsPending: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "cherub",
				Name:      "approvals_pending",
				Help:      "Number of approval gates currently awaiting a human decision",
			},
		),
		ApprovalResolution: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cherub",
				Name:      "approval_resolutions_total",
				Help:      "Total approval gate resolutions by outcome",
			},
			[]string{"status"}, // status=approved/denied/timed_out
		),
		AuditDropsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "cherub",
				Name:      "audit_drops_total",
				Help:      "Total decision records dropped due to sink backpressure or error",
			},
		),
	}
}

// ObserveDecision satisfies enforce.Recorder.
func (m *Metrics) ObserveDecision(tool, verdict string, duration time.Duration) {
	m.DecisionsTotal.WithLabelValues(tool, verdict).Inc()
	m.DecisionDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// SetApprovalsPending sets the current approval-gate queue depth gauge.
func (m *Metrics) SetApprovalsPending(n int) {
	m.ApprovalsPending.Set(float64(n))
}

// ObserveApprovalResolution records how a pending approval gate resolved.
func (m *Metrics) ObserveApprovalResolution(status string) {
	m.ApprovalResolution.WithLabelValues(status).Inc()
}

// IncAuditDrop records a decision record the sink failed to persist.
func (m *Metrics) IncAuditDrop() {
	m.AuditDropsTotal.Inc()
}
