package service

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"spendwatch/budgetgate/pkg/budget"
)

// Service is the facade over the budget-tracking engine. It resolves
// budgeting configs, validates requests, and routes them to the
// per-project trackers in the concurrent store.
type Service struct {
	registry *Registry
	store    *store
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall clock. Tests use this to drive
// deterministic timestamps through the convenience methods.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Service over the given registry.
func New(registry *Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		store:    newStore(),
		metrics:  NewMetrics(nil),
		logger:   slog.Default().With("component", "service"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSpending reports spend for a project at the current time and
// returns whether the project now exceeds its budget.
func (s *Service) RecordSpending(configName string, projectID uint64, spent float64) (bool, error) {
	return s.RecordSpendingAt(configName, projectID, spent, s.now())
}

// RecordSpendingAt reports spend for a project at an explicit event
// time. The spend is validated, applied to the project's window, and
// the hysteresis rule decides the returned state. The record and the
// decision execute as one critical section per project.
func (s *Service) RecordSpendingAt(configName string, projectID uint64, spent float64, at time.Time) (bool, error) {
	started := time.Now()
	defer func() {
		s.metrics.opDuration.WithLabelValues("record_spending").Observe(time.Since(started).Seconds())
	}()

	if math.IsNaN(spent) || math.IsInf(spent, 0) || spent <= 0 {
		s.metrics.RecordRejection("invalid_spend")
		return false, fmt.Errorf("%w: %v", ErrInvalidSpend, spent)
	}
	cfg, ok := s.registry.Lookup(configName)
	if !ok {
		s.metrics.RecordRejection("unknown_config")
		return false, fmt.Errorf("%w: %q", ErrUnknownConfig, configName)
	}

	d := s.store.withTracker(key{configName, projectID}, cfg, at, func(tr *budget.Tracker) budget.Decision {
		return tr.RecordAt(spent, at)
	})

	s.metrics.spendingRecords.WithLabelValues(configName).Inc()
	s.observeDecision(configName, projectID, d, at)
	return d.State.Exceeds(), nil
}

// ExceedsBudget reports whether a project currently exceeds its budget,
// evaluated at the current time.
func (s *Service) ExceedsBudget(configName string, projectID uint64) (bool, error) {
	return s.ExceedsBudgetAt(configName, projectID, s.now())
}

// ExceedsBudgetAt is the pure-read variant at an explicit event time.
// No spend is applied, but the window is re-evaluated at the given
// time: buckets may have aged out since the last write, so the state
// can flip here, subject to the same backoff rule. First reference to
// an unknown project creates its tracker.
func (s *Service) ExceedsBudgetAt(configName string, projectID uint64, at time.Time) (bool, error) {
	started := time.Now()
	defer func() {
		s.metrics.opDuration.WithLabelValues("exceeds_budget").Observe(time.Since(started).Seconds())
	}()

	cfg, ok := s.registry.Lookup(configName)
	if !ok {
		s.metrics.RecordRejection("unknown_config")
		return false, fmt.Errorf("%w: %q", ErrUnknownConfig, configName)
	}

	d := s.store.withTracker(key{configName, projectID}, cfg, at, func(tr *budget.Tracker) budget.Decision {
		return tr.CheckAt(at)
	})

	s.observeDecision(configName, projectID, d, at)
	return d.State.Exceeds(), nil
}

// EvictStale drops entries that carry no live information at now and
// have been idle for at least the given duration. It returns the number
// of entries removed. The Sweeper calls this on a schedule; tests call
// it directly.
func (s *Service) EvictStale(now time.Time, idle time.Duration) int {
	evicted := s.store.evictStale(now, idle)
	s.metrics.RecordEvictions(evicted, s.store.len())
	return evicted
}

// TrackedProjects returns the number of live entries in the store.
func (s *Service) TrackedProjects() int {
	return s.store.len()
}

// Registry returns the config registry the service was built with.
func (s *Service) Registry() *Registry { return s.registry }

func (s *Service) observeDecision(configName string, projectID uint64, d budget.Decision, at time.Time) {
	s.metrics.RecordCheck(configName, d.State.String())
	if d.Flipped {
		s.metrics.RecordTransition(configName, d.State.String())
		s.logger.Info("budget state changed",
			"config", configName,
			"project_id", projectID,
			"state", d.State.String(),
			"at", at,
		)
	}
	if d.Suppressed {
		s.metrics.RecordSuppressedFlip(configName)
		s.logger.Debug("budget state flip suppressed by backoff",
			"config", configName,
			"project_id", projectID,
			"state", d.State.String(),
			"at", at,
		)
	}
}
