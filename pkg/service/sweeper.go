package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SweeperConfig contains the eviction tuning knobs. Eviction timing is
// a memory-bound policy, not a correctness contract: a stale entry that
// survives a sweep just answers its next request from an empty window.
type SweeperConfig struct {
	// Schedule is a cron expression or descriptor for the sweep cadence.
	// Examples: "@every 30s", "*/5 * * * *".
	Schedule string

	// Idle is the minimum time an entry must go untouched before it is
	// eligible for eviction, on top of its tracker being stale.
	Idle time.Duration
}

// DefaultSweeperConfig returns the default eviction tuning.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Schedule: "@every 30s",
		Idle:     5 * time.Minute,
	}
}

// Sweeper periodically evicts stale project entries from the store.
type Sweeper struct {
	service *Service
	config  SweeperConfig
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given service.
func NewSweeper(svc *Service, config SweeperConfig) *Sweeper {
	if config.Schedule == "" {
		config.Schedule = DefaultSweeperConfig().Schedule
	}
	if config.Idle <= 0 {
		config.Idle = DefaultSweeperConfig().Idle
	}
	return &Sweeper{
		service: svc,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "service.sweeper"),
	}
}

// Start begins the scheduled sweeps. The sweeper stops itself when ctx
// is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already running")
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid eviction schedule %q: %w", s.config.Schedule, err)
	}
	if _, err := s.cron.AddFunc(s.config.Schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule eviction sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("eviction sweeper started",
		"schedule", s.config.Schedule,
		"idle", s.config.Idle.String(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("eviction sweeper stopped")
	}
}

// IsRunning reports whether the sweeper is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) sweep() {
	now := s.service.now()
	evicted := s.service.EvictStale(now, s.config.Idle)
	if evicted > 0 {
		s.logger.Debug("evicted stale project entries",
			"evicted", evicted,
			"live", s.service.TrackedProjects(),
		)
	}
}
