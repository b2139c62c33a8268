package budget

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Budget:     5.0,
		Window:     2 * time.Minute,
		BucketSize: 10 * time.Second,
		Backoff:    5 * time.Minute,
	}
}

func TestTracker_StartsWithinBudget(t *testing.T) {
	tr := NewTracker(testConfig())

	if got := tr.State(); got != WithinBudget {
		t.Errorf("initial state = %v, want within_budget", got)
	}
	if got := tr.CheckAt(base); got.State != WithinBudget {
		t.Errorf("CheckAt on empty window = %v, want within_budget", got.State)
	}
}

func TestTracker_FirstTransitionIsImmediate(t *testing.T) {
	tr := NewTracker(testConfig())

	// The very first event already blows the budget; no backoff applies
	// to the first decision.
	got := tr.RecordAt(50.0, base)
	if got.State != ExceedsBudget || !got.Flipped {
		t.Errorf("RecordAt(50) = %+v, want an immediate flip to exceeds_budget", got)
	}
	if at, ok := tr.LastTransition(); !ok || !at.Equal(base) {
		t.Errorf("LastTransition = (%v, %v), want (%v, true)", at, ok, base)
	}
}

func TestTracker_ExactBudgetIsWithin(t *testing.T) {
	tr := NewTracker(testConfig())

	if got := tr.RecordAt(5.0, base); got.State != WithinBudget {
		t.Errorf("total == budget classified as %v, want within_budget", got.State)
	}
	if got := tr.RecordAt(0.01, base.Add(time.Second)); got.State != ExceedsBudget {
		t.Errorf("total > budget classified as %v, want exceeds_budget", got.State)
	}
}

func TestTracker_BackoffSuppressesReversal(t *testing.T) {
	// Scenario: budget=5, window=120s, bucket=10s, backoff=300s.
	tr := NewTracker(testConfig())

	if got := tr.RecordAt(50.0, base); got.State != ExceedsBudget {
		t.Fatalf("t=0: RecordAt(50) = %v, want exceeds_budget", got.State)
	}

	// t=290: the spend expired from the window long ago, but the flip
	// back is still pinned by the backoff.
	got := tr.CheckAt(base.Add(290 * time.Second))
	if got.State != ExceedsBudget || !got.Suppressed {
		t.Errorf("t=290: CheckAt = %+v, want a suppressed reversal reporting exceeds_budget", got)
	}

	// t=301: backoff elapsed, window empty, state flips back.
	got = tr.CheckAt(base.Add(301 * time.Second))
	if got.State != WithinBudget || !got.Flipped {
		t.Errorf("t=301: CheckAt = %+v, want a committed flip to within_budget", got)
	}
}

func TestTracker_NoFlapWhileOscillating(t *testing.T) {
	cfg := Config{
		Budget:     5.0,
		Window:     30 * time.Second,
		BucketSize: 5 * time.Second,
		Backoff:    time.Minute,
	}
	tr := NewTracker(cfg)

	if got := tr.RecordAt(10.0, base); got.State != ExceedsBudget {
		t.Fatalf("initial overspend = %v, want exceeds_budget", got.State)
	}

	// The window total crosses the threshold in both directions inside
	// one backoff interval; the visible state must not move.
	steps := []struct {
		off    time.Duration
		record float64 // 0 means pure check
	}{
		{35 * time.Second, 0},  // window drained, reversal suppressed
		{40 * time.Second, 10}, // back above budget
		{45 * time.Second, 0},
		{55 * time.Second, 0},
	}
	for _, s := range steps {
		at := base.Add(s.off)
		var got Decision
		if s.record > 0 {
			got = tr.RecordAt(s.record, at)
		} else {
			got = tr.CheckAt(at)
		}
		if got.State != ExceedsBudget || got.Flipped {
			t.Fatalf("t=+%v: decision = %+v, want exceeds_budget with no flip throughout backoff", s.off, got)
		}
	}
	if at, _ := tr.LastTransition(); !at.Equal(base) {
		t.Errorf("a flip was committed during backoff at %v", at)
	}
}

func TestTracker_IdempotentReads(t *testing.T) {
	tr := NewTracker(testConfig())
	tr.RecordAt(50.0, base)

	at := base.Add(30 * time.Second)
	first := tr.CheckAt(at)
	for i := 0; i < 5; i++ {
		if got := tr.CheckAt(at); got != first {
			t.Fatalf("repeated CheckAt(%v) = %v, want %v", at, got, first)
		}
	}
}

func TestTracker_ZeroBackoff(t *testing.T) {
	cfg := testConfig()
	cfg.Backoff = 0
	tr := NewTracker(cfg)

	if got := tr.RecordAt(50.0, base); got.State != ExceedsBudget {
		t.Fatalf("RecordAt(50) = %v, want exceeds_budget", got.State)
	}
	// With no debounce the state follows the window total directly.
	if got := tr.CheckAt(base.Add(3 * time.Minute)); got.State != WithinBudget {
		t.Errorf("CheckAt after expiry = %v, want within_budget with zero backoff", got.State)
	}
}

func TestTracker_StaleAt(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tr *Tracker)
		at    time.Duration
		want  bool
	}{
		{
			name:  "fresh tracker is stale",
			setup: func(tr *Tracker) {},
			at:    0,
			want:  true,
		},
		{
			name:  "live spend keeps it",
			setup: func(tr *Tracker) { tr.RecordAt(1.0, base) },
			at:    time.Minute,
			want:  false,
		},
		{
			name:  "expired spend, no transition",
			setup: func(tr *Tracker) { tr.RecordAt(1.0, base) },
			at:    10 * time.Minute,
			want:  true,
		},
		{
			name:  "backoff hold pins the entry",
			setup: func(tr *Tracker) { tr.RecordAt(50.0, base) },
			at:    4 * time.Minute,
			want:  false,
		},
		{
			name:  "backoff lapsed and window empty",
			setup: func(tr *Tracker) { tr.RecordAt(50.0, base) },
			at:    6 * time.Minute,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(testConfig())
			tt.setup(tr)
			if got := tr.StaleAt(base.Add(tt.at)); got != tt.want {
				t.Errorf("StaleAt(+%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func BenchmarkTracker_RecordAt(b *testing.B) {
	tr := NewTracker(testConfig())
	at := base
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.RecordAt(0.001, at)
		at = at.Add(time.Millisecond)
	}
}
