// Package service exposes the budget-tracking engine behind the two
// logical operations every front end translates into: RecordSpending
// and ExceedsBudget.
//
// # Structure
//
// A Registry maps config names to their budgeting parameters and is
// read-only after construction. The Service resolves the config,
// validates the request, and delegates to a sharded concurrent store
// holding one budget.Tracker per (config name, project id) pair.
// Entries are created lazily on first reference and evicted by a
// cron-scheduled Sweeper once they go stale.
//
// # Concurrency
//
// The store uses per-shard RWMutexes for the mapping and a per-entry
// Mutex for the record/check critical section, so operations on
// distinct projects never serialize against each other. An entry
// carries an evicted marker; a lookup that loses the race against the
// sweeper retries instead of mutating a dead entry.
//
// # Errors
//
// ErrUnknownConfig and ErrInvalidSpend are the only user-facing
// failures. Both are detected before any store entry is created and
// are returned to the caller; there is no assume-within-budget
// fallback.
package service
