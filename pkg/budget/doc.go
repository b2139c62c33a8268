// Package budget implements per-project spend tracking over a rolling
// time window, with hysteresis on the exceeds/within-budget decision.
//
// # Components
//
// Window is a fixed ring of time buckets covering one budgeting window.
// Spend recorded at a timestamp lands in the bucket owning that
// timestamp; buckets age out lazily when their slot is reused or read,
// so there is no background sweep.
//
// Tracker wraps a Window with the exceeds/within-budget state machine.
// Once the state flips, it is pinned for the configured backoff
// duration, which prevents rapid flip-flopping when the window total
// oscillates around the budget.
//
// # Time Handling
//
// Nothing in this package reads the wall clock. Every operation takes
// the event timestamp from the caller, so behavior is a pure function
// of (stored state, timestamp) and tests can drive synthetic clocks.
//
// # Thread Safety
//
// Window and Tracker are not safe for concurrent use. Each Tracker is
// owned by exactly one store entry, and the store serializes all
// operations on it (see package service).
package budget
