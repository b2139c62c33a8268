package budget

import "time"

// Window accumulates spend in a fixed ring of time buckets covering one
// rolling budgeting window.
//
// The bucket for timestamp t is floor(t / bucketSize) mod n, so a slot
// is reused across window cycles. A slot's stored start time is checked
// before every write and read: a mismatch on write clears the slot, and
// a start time outside [t-window, t] contributes zero on read. That is
// the entire expiry mechanism; nothing scans the ring proactively.
type Window struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []bucket
}

// bucket is one slot of the ring: the start of the sub-interval it
// currently represents and the spend accumulated in it.
type bucket struct {
	start time.Time
	spent float64
}

// NewWindow creates a window of the given length with ceil(window /
// bucketSize) bucket slots.
func NewWindow(window, bucketSize time.Duration) *Window {
	n := Config{Window: window, BucketSize: bucketSize}.NumBuckets()
	return &Window{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]bucket, n),
	}
}

// Record adds amount to the bucket owning at.
//
// If the slot still holds data from an earlier window cycle it is
// cleared first. A record whose slot has already been reused by a newer
// bucket (a timestamp older than the oldest live bucket) is dropped
// rather than clobbering the newer data.
func (w *Window) Record(amount float64, at time.Time) {
	idx := w.bucketIndex(at)
	start := w.bucketStart(idx)
	b := &w.buckets[w.slot(idx)]
	switch {
	case b.start.Equal(start):
		// Slot already owns this sub-interval.
	case b.start.After(start):
		// Slot was reused by a newer cycle; the record is too old to keep.
		return
	default:
		b.start = start
		b.spent = 0
	}
	b.spent += amount
}

// Total returns the sum of all buckets whose start time lies within
// [at-window, at]. Expired slots contribute zero but are not purged.
func (w *Window) Total(at time.Time) float64 {
	cutoff := at.Add(-w.window)
	var total float64
	for i := range w.buckets {
		b := &w.buckets[i]
		if b.start.IsZero() || b.start.Before(cutoff) || b.start.After(at) {
			continue
		}
		total += b.spent
	}
	return total
}

// Live reports whether any bucket still falls inside the window ending
// at the given time. A window that is not live holds no information
// worth keeping.
func (w *Window) Live(at time.Time) bool {
	cutoff := at.Add(-w.window)
	for i := range w.buckets {
		b := &w.buckets[i]
		if !b.start.IsZero() && !b.start.Before(cutoff) && !b.start.After(at) {
			return true
		}
	}
	return false
}

// bucketIndex returns the floor-divided bucket number of a timestamp.
// Both the ring index and the slot's start time derive from it, so the
// two can never disagree about which sub-interval a timestamp owns,
// whatever the bucket size.
func (w *Window) bucketIndex(at time.Time) int64 {
	ns := at.UnixNano()
	idx := ns / int64(w.bucketSize)
	if ns%int64(w.bucketSize) < 0 {
		idx--
	}
	return idx
}

// bucketStart returns the start time of the given bucket number.
func (w *Window) bucketStart(idx int64) time.Time {
	return time.Unix(0, idx*int64(w.bucketSize))
}

// slot maps a bucket number to its ring index.
func (w *Window) slot(idx int64) int {
	s := int(idx % int64(len(w.buckets)))
	if s < 0 {
		s += len(w.buckets)
	}
	return s
}
