package service

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"spendwatch/budgetgate/pkg/budget"
)

var base = time.Unix(1_700_000_000, 0)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(map[string]budget.Config{
		"symbolication-native": {
			Budget:     5.0,
			Window:     2 * time.Minute,
			BucketSize: 10 * time.Second,
			Backoff:    5 * time.Minute,
		},
		"symbolication-jvm": {
			Budget:     7.5,
			Window:     2 * time.Minute,
			BucketSize: 10 * time.Second,
			Backoff:    5 * time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestService_RecordSpendingScenario(t *testing.T) {
	// budget=5, window=120s, bucket=10s, backoff=300s.
	svc := New(testRegistry(t))

	exceeds, err := svc.RecordSpendingAt("symbolication-native", 42, 50.0, base)
	if err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}
	if !exceeds {
		t.Error("t=0: want exceeds_budget=true after 50.0 against budget 5.0")
	}

	// t=290: spend long expired, reversal still pinned by backoff.
	exceeds, err = svc.ExceedsBudgetAt("symbolication-native", 42, base.Add(290*time.Second))
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if !exceeds {
		t.Error("t=290: want exceeds_budget=true (suppressed reversal)")
	}

	// t=301: backoff elapsed, window empty.
	exceeds, err = svc.ExceedsBudgetAt("symbolication-native", 42, base.Add(301*time.Second))
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if exceeds {
		t.Error("t=301: want exceeds_budget=false once backoff elapsed")
	}
}

func TestService_UnknownConfig(t *testing.T) {
	svc := New(testRegistry(t))

	if _, err := svc.RecordSpendingAt("no-such-config", 1, 1.0, base); !errors.Is(err, ErrUnknownConfig) {
		t.Errorf("RecordSpendingAt error = %v, want ErrUnknownConfig", err)
	}
	if _, err := svc.ExceedsBudgetAt("no-such-config", 1, base); !errors.Is(err, ErrUnknownConfig) {
		t.Errorf("ExceedsBudgetAt error = %v, want ErrUnknownConfig", err)
	}
	if n := svc.TrackedProjects(); n != 0 {
		t.Errorf("unknown config created %d store entries, want 0", n)
	}
}

func TestService_InvalidSpend(t *testing.T) {
	svc := New(testRegistry(t))

	for _, spent := range []float64{-1.0, 0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := svc.RecordSpendingAt("symbolication-native", 1, spent, base); !errors.Is(err, ErrInvalidSpend) {
			t.Errorf("RecordSpendingAt(%v) error = %v, want ErrInvalidSpend", spent, err)
		}
	}
	if n := svc.TrackedProjects(); n != 0 {
		t.Errorf("invalid spend created %d store entries, want 0", n)
	}
}

func TestService_AutoCreateOnCheck(t *testing.T) {
	svc := New(testRegistry(t))

	// First reference through the read path creates the tracker.
	exceeds, err := svc.ExceedsBudgetAt("symbolication-native", 7, base)
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if exceeds {
		t.Error("fresh project reported exceeds_budget=true")
	}
	if n := svc.TrackedProjects(); n != 1 {
		t.Errorf("TrackedProjects = %d, want 1", n)
	}
}

func TestService_ProjectsAreIsolated(t *testing.T) {
	svc := New(testRegistry(t))

	if _, err := svc.RecordSpendingAt("symbolication-native", 1, 50.0, base); err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}

	// Same config, different project: untouched by project 1's spend.
	exceeds, err := svc.ExceedsBudgetAt("symbolication-native", 2, base)
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if exceeds {
		t.Error("project 2 inherited project 1's spend")
	}

	// Same project id under a different config is a distinct entry.
	exceeds, err = svc.ExceedsBudgetAt("symbolication-jvm", 1, base)
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if exceeds {
		t.Error("configs share state for the same project id")
	}
}

func TestService_ConfigsHaveDistinctBudgets(t *testing.T) {
	svc := New(testRegistry(t))

	// 6.0 exceeds the 5.0 budget but not the 7.5 one.
	exceeds, err := svc.RecordSpendingAt("symbolication-native", 9, 6.0, base)
	if err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}
	if !exceeds {
		t.Error("6.0 against budget 5.0: want exceeds_budget=true")
	}

	exceeds, err = svc.RecordSpendingAt("symbolication-jvm", 9, 6.0, base)
	if err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}
	if exceeds {
		t.Error("6.0 against budget 7.5: want exceeds_budget=false")
	}
}

func TestService_ConcurrentRecordsNoLostUpdates(t *testing.T) {
	// 50 goroutines x 20 records x 0.1 = 100.0 total, all within one
	// bucket interval. With budget 99.95 the sum only trips the budget
	// if no update is lost.
	reg, err := NewRegistry(map[string]budget.Config{
		"bulk": {
			Budget:     99.95,
			Window:     time.Minute,
			BucketSize: time.Minute,
			Backoff:    0,
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	svc := New(reg)

	var wg sync.WaitGroup
	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := svc.RecordSpendingAt("bulk", 1, 0.1, base.Add(time.Second)); err != nil {
					t.Errorf("RecordSpendingAt: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	exceeds, err := svc.ExceedsBudgetAt("bulk", 1, base.Add(2*time.Second))
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if !exceeds {
		t.Error("window total lost updates: 100.0 recorded against budget 99.95")
	}
	if n := svc.TrackedProjects(); n != 1 {
		t.Errorf("TrackedProjects = %d, want 1", n)
	}
}

func TestService_EvictStale(t *testing.T) {
	svc := New(testRegistry(t))

	if _, err := svc.RecordSpendingAt("symbolication-native", 42, 50.0, base); err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}

	// Inside the backoff hold nothing may be evicted, however idle.
	if n := svc.EvictStale(base.Add(4*time.Minute), time.Second); n != 0 {
		t.Errorf("evicted %d entries during backoff hold, want 0", n)
	}

	// Backoff lapsed, window empty, idle threshold met.
	if n := svc.EvictStale(base.Add(10*time.Minute), 5*time.Minute); n != 1 {
		t.Errorf("evicted %d entries, want 1", n)
	}
	if n := svc.TrackedProjects(); n != 0 {
		t.Errorf("TrackedProjects after eviction = %d, want 0", n)
	}

	// The project answers from a fresh window afterwards.
	exceeds, err := svc.ExceedsBudgetAt("symbolication-native", 42, base.Add(11*time.Minute))
	if err != nil {
		t.Fatalf("ExceedsBudgetAt: %v", err)
	}
	if exceeds {
		t.Error("re-created project still exceeds_budget after eviction")
	}
}

func TestService_EvictionRespectsIdle(t *testing.T) {
	svc := New(testRegistry(t))

	// A within-budget entry with expired spend is tracker-stale, but the
	// idle floor keeps recently touched entries alive.
	if _, err := svc.RecordSpendingAt("symbolication-native", 1, 1.0, base); err != nil {
		t.Fatalf("RecordSpendingAt: %v", err)
	}

	if n := svc.EvictStale(base.Add(3*time.Minute), 10*time.Minute); n != 0 {
		t.Errorf("evicted %d recently touched entries, want 0", n)
	}
	if n := svc.EvictStale(base.Add(11*time.Minute), 10*time.Minute); n != 1 {
		t.Errorf("evicted %d entries past the idle floor, want 1", n)
	}
}

func TestService_ConcurrentOpsAndEviction(t *testing.T) {
	svc := New(testRegistry(t))

	var workers sync.WaitGroup
	stop := make(chan struct{})

	// Hammer a handful of projects while sweeps run with a zero idle
	// floor; every operation must land on a live entry.
	for g := 0; g < 8; g++ {
		workers.Add(1)
		go func(project uint64) {
			defer workers.Done()
			at := base
			for i := 0; i < 500; i++ {
				if _, err := svc.ExceedsBudgetAt("symbolication-native", project, at); err != nil {
					t.Errorf("ExceedsBudgetAt: %v", err)
					return
				}
				at = at.Add(time.Millisecond)
			}
		}(uint64(g % 4))
	}

	var sweeper sync.WaitGroup
	sweeper.Add(1)
	go func() {
		defer sweeper.Done()
		for {
			select {
			case <-stop:
				return
			default:
				// Far-future sweeps make every entry stale immediately.
				svc.EvictStale(base.Add(24*time.Hour), 0)
			}
		}
	}()

	workers.Wait()
	close(stop)
	sweeper.Wait()
}

func TestService_InjectedClock(t *testing.T) {
	fixed := base.Add(time.Hour)
	svc := New(testRegistry(t), WithClock(func() time.Time { return fixed }))

	exceeds, err := svc.RecordSpending("symbolication-native", 3, 50.0)
	if err != nil {
		t.Fatalf("RecordSpending: %v", err)
	}
	if !exceeds {
		t.Error("RecordSpending via injected clock: want exceeds_budget=true")
	}
}
