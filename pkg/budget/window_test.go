package budget

import (
	"testing"
	"time"
)

// base is an arbitrary synthetic clock origin aligned to a bucket
// boundary, so tests are deterministic regardless of wall time.
var base = time.Unix(1_700_000_000, 0)

func TestWindow_RecordAndTotal(t *testing.T) {
	w := NewWindow(2*time.Minute, 10*time.Second)

	w.Record(1.5, base)
	w.Record(2.5, base.Add(3*time.Second)) // same bucket
	w.Record(4.0, base.Add(30*time.Second))

	got := w.Total(base.Add(31 * time.Second))
	if got != 8.0 {
		t.Errorf("Total = %v, want 8.0", got)
	}
}

func TestWindow_BucketBoundaryAlignment(t *testing.T) {
	// Sums must not depend on where records fall inside a bucket.
	tests := []struct {
		name    string
		offsets []time.Duration
		queryAt time.Duration
		want    float64
	}{
		{"all at bucket starts", []time.Duration{0, 10 * time.Second, 20 * time.Second}, 20 * time.Second, 3},
		{"mid bucket", []time.Duration{5 * time.Second, 15 * time.Second}, 19 * time.Second, 2},
		{"last instant of bucket", []time.Duration{9999 * time.Millisecond}, 10 * time.Second, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(time.Minute, 10*time.Second)
			for _, off := range tt.offsets {
				w.Record(1, base.Add(off))
			}
			if got := w.Total(base.Add(tt.queryAt)); got != tt.want {
				t.Errorf("Total = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindow_NonDivisorBucketSizes(t *testing.T) {
	// Bucket boundaries derive from the Unix epoch. Sizes that leave a
	// remainder against other time origins must still keep two records
	// landing in one live bucket additive rather than letting the
	// second clear the first.
	sizes := []time.Duration{7 * time.Second, 11 * time.Second, 13 * time.Second}

	for _, size := range sizes {
		t.Run(size.String(), func(t *testing.T) {
			w := NewWindow(10*size, size)

			// Align to the start of an epoch bucket, then record at both
			// ends of that bucket.
			secs := base.Unix()
			start := time.Unix(secs-secs%int64(size/time.Second), 0)
			w.Record(5, start)
			w.Record(3, start.Add(size-time.Second))

			if got := w.Total(start.Add(size)); got != 8 {
				t.Errorf("Total = %v, want 8", got)
			}
		})
	}
}

func TestWindow_Expiry(t *testing.T) {
	w := NewWindow(2*time.Minute, 10*time.Second)
	w.Record(50, base)

	if got := w.Total(base.Add(time.Minute)); got != 50 {
		t.Errorf("Total inside window = %v, want 50", got)
	}

	// Past the window, the spend is gone even though nothing purged it.
	if got := w.Total(base.Add(3 * time.Minute)); got != 0 {
		t.Errorf("Total after expiry = %v, want 0", got)
	}
}

func TestWindow_SlotReuseClearsOldCycle(t *testing.T) {
	w := NewWindow(time.Minute, 10*time.Second)
	w.Record(10, base)

	// Exactly one ring cycle later the same slot is reused; the stale
	// value must not leak into the new cycle's total.
	later := base.Add(60 * time.Second)
	w.Record(3, later)

	if got := w.Total(later); got != 3 {
		t.Errorf("Total after slot reuse = %v, want 3", got)
	}
}

func TestWindow_FullResetAfterLongIdle(t *testing.T) {
	w := NewWindow(time.Minute, 10*time.Second)
	for off := time.Duration(0); off < time.Minute; off += 10 * time.Second {
		w.Record(1, base.Add(off))
	}

	// Untouched for far longer than the window: every slot is implicitly
	// zero before the next add.
	idle := base.Add(time.Hour)
	w.Record(2, idle)

	if got := w.Total(idle); got != 2 {
		t.Errorf("Total after long idle = %v, want 2", got)
	}
}

func TestWindow_OutOfOrderTimestamps(t *testing.T) {
	w := NewWindow(2*time.Minute, 10*time.Second)

	now := base.Add(time.Minute)
	w.Record(5, now)
	// Slightly stale record from a skewed caller, still inside the window.
	w.Record(3, now.Add(-25*time.Second))

	if got := w.Total(now); got != 8 {
		t.Errorf("Total with skewed record = %v, want 8", got)
	}
}

func TestWindow_TooOldRecordIsDropped(t *testing.T) {
	w := NewWindow(time.Minute, 10*time.Second)

	now := base.Add(10 * time.Minute)
	w.Record(5, now)
	// Far older than the oldest live bucket; must be a silent no-op.
	w.Record(100, now.Add(-5*time.Minute))

	if got := w.Total(now); got != 5 {
		t.Errorf("Total after ancient record = %v, want 5", got)
	}
}

func TestWindow_QueryBeforeRecords(t *testing.T) {
	w := NewWindow(time.Minute, 10*time.Second)
	w.Record(5, base.Add(30*time.Second))

	// A query older than every bucket sees nothing and must not panic.
	if got := w.Total(base.Add(-time.Hour)); got != 0 {
		t.Errorf("Total before records = %v, want 0", got)
	}
}

func TestWindow_Live(t *testing.T) {
	w := NewWindow(time.Minute, 10*time.Second)

	if w.Live(base) {
		t.Error("empty window reported live")
	}

	w.Record(1, base)
	if !w.Live(base.Add(30 * time.Second)) {
		t.Error("window with recent spend reported dead")
	}
	if w.Live(base.Add(2 * time.Minute)) {
		t.Error("window with only expired spend reported live")
	}
}

func TestWindow_UnevenBucketDivision(t *testing.T) {
	// 50s window with 15s buckets: ceil gives 4 slots. The window must
	// still cover [at-window, at] exactly.
	w := NewWindow(50*time.Second, 15*time.Second)

	w.Record(1, base)
	w.Record(2, base.Add(45*time.Second))

	if got := w.Total(base.Add(45 * time.Second)); got != 3 {
		t.Errorf("Total = %v, want 3", got)
	}
	// base bucket starts at base and leaves the window once the cutoff
	// passes it.
	if got := w.Total(base.Add(51 * time.Second)); got != 2 {
		t.Errorf("Total after edge = %v, want 2", got)
	}
}

func BenchmarkWindow_Record(b *testing.B) {
	w := NewWindow(2*time.Minute, 10*time.Second)
	at := base
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Record(1.0, at)
		at = at.Add(time.Millisecond)
	}
}

func BenchmarkWindow_Total(b *testing.B) {
	w := NewWindow(2*time.Minute, 10*time.Second)
	for off := time.Duration(0); off < 2*time.Minute; off += 10 * time.Second {
		w.Record(1.0, base.Add(off))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.Total(base.Add(2 * time.Minute))
	}
}
