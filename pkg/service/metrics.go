package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus collectors for the budget service.
type Metrics struct {
	// Operation counters
	spendingRecords *prometheus.CounterVec
	budgetChecks    *prometheus.CounterVec

	// State machine activity
	stateTransitions     *prometheus.CounterVec
	suppressedFlips      *prometheus.CounterVec

	// Request rejections by reason
	rejections *prometheus.CounterVec

	// Store activity
	evictions       prometheus.Counter
	trackedProjects prometheus.Gauge

	// Operation latency
	opDuration *prometheus.HistogramVec
}

// NewMetrics creates the service collectors and registers them with reg.
// A nil registerer leaves the collectors unregistered, which is what
// tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		spendingRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetgate_spending_records_total",
				Help: "Total number of spend reports accepted",
			},
			[]string{"config"},
		),

		budgetChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetgate_budget_checks_total",
				Help: "Total number of budget decisions, by visible result",
			},
			[]string{"config", "result"},
		),

		stateTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetgate_state_transitions_total",
				Help: "Total number of committed exceeds/within state flips",
			},
			[]string{"config", "to"},
		),

		suppressedFlips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetgate_suppressed_flips_total",
				Help: "Total number of state flips held back by the backoff",
			},
			[]string{"config"},
		),

		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budgetgate_request_rejections_total",
				Help: "Total number of rejected requests, by reason",
			},
			[]string{"reason"},
		),

		evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budgetgate_evictions_total",
				Help: "Total number of stale project entries evicted",
			},
		),

		trackedProjects: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "budgetgate_tracked_projects",
				Help: "Number of live (config, project) entries in the store",
			},
		),

		opDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "budgetgate_operation_duration_seconds",
				Help: "Latency of core budget operations",
				// All work is in-memory, so the interesting range is
				// microseconds up to lock-contention territory.
				Buckets: []float64{5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
			},
			[]string{"op"},
		),
	}
}

// RecordCheck counts one budget decision.
func (m *Metrics) RecordCheck(config string, st string) {
	m.budgetChecks.WithLabelValues(config, st).Inc()
}

// RecordRejection counts one rejected request.
func (m *Metrics) RecordRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// RecordTransition counts one committed state flip.
func (m *Metrics) RecordTransition(config string, to string) {
	m.stateTransitions.WithLabelValues(config, to).Inc()
}

// RecordSuppressedFlip counts one flip held back by the backoff.
func (m *Metrics) RecordSuppressedFlip(config string) {
	m.suppressedFlips.WithLabelValues(config).Inc()
}

// RecordEvictions adds to the eviction counter and refreshes the live
// entry gauge.
func (m *Metrics) RecordEvictions(n int, live int) {
	if n > 0 {
		m.evictions.Add(float64(n))
	}
	m.trackedProjects.Set(float64(live))
}
