package budget

import (
	"fmt"
	"math"
	"time"
)

// Config holds the budgeting parameters shared by every project that is
// tracked under one named configuration. It is immutable once loaded.
type Config struct {
	// Budget is the maximum cumulative spend allowed inside one window.
	// A window total strictly greater than Budget counts as exceeded.
	Budget float64

	// Window is the length of the rolling budgeting window.
	Window time.Duration

	// BucketSize is the granularity of the window's time buckets.
	// Smaller buckets track the window edge more accurately at the cost
	// of memory.
	BucketSize time.Duration

	// Backoff is the minimum duration between two consecutive state
	// flips of a project. Zero disables the debounce.
	Backoff time.Duration
}

// NumBuckets returns the number of bucket slots needed to cover the
// window: ceil(Window / BucketSize).
func (c Config) NumBuckets() int {
	n := int((c.Window + c.BucketSize - 1) / c.BucketSize)
	if n < 1 {
		n = 1
	}
	return n
}

// Validate checks that the parameters describe a usable configuration.
func (c Config) Validate() error {
	if math.IsNaN(c.Budget) || math.IsInf(c.Budget, 0) || c.Budget <= 0 {
		return fmt.Errorf("budget must be a positive finite number, got %v", c.Budget)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.BucketSize <= 0 {
		return fmt.Errorf("bucket_size must be positive, got %v", c.BucketSize)
	}
	if c.BucketSize > c.Window {
		return fmt.Errorf("bucket_size %v must not exceed window %v", c.BucketSize, c.Window)
	}
	if c.Backoff < 0 {
		return fmt.Errorf("backoff must not be negative, got %v", c.Backoff)
	}
	return nil
}
