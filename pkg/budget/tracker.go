package budget

import "time"

// State is the externally visible budget state of one project.
type State uint8

const (
	// WithinBudget means the window total does not exceed the budget.
	WithinBudget State = iota

	// ExceedsBudget means the project should be throttled.
	ExceedsBudget
)

// String returns the state name as used in logs and metrics labels.
func (s State) String() string {
	if s == ExceedsBudget {
		return "exceeds_budget"
	}
	return "within_budget"
}

// Exceeds reports whether the state is ExceedsBudget.
func (s State) Exceeds() bool { return s == ExceedsBudget }

// Tracker is the hysteresis state machine for a single (config,
// project) pair. It owns a Window and debounces state flips: once the
// state changes, it cannot change again until the configured backoff
// has elapsed, no matter how often the window total crosses the budget
// in between.
//
// A fresh Tracker starts WithinBudget and has never transitioned, so
// its very first flip is permitted immediately; the backoff only
// constrains subsequent flips.
type Tracker struct {
	cfg    Config
	window *Window

	state          State
	lastTransition time.Time
	transitioned   bool
}

// NewTracker creates a tracker with an empty window, in WithinBudget.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		window: NewWindow(cfg.Window, cfg.BucketSize),
	}
}

// Decision is the outcome of one record or check event.
type Decision struct {
	// State is the externally visible state after the event.
	State State

	// Flipped is true when this event committed a state transition.
	Flipped bool

	// Suppressed is true when the window total called for a transition
	// that the backoff held back; State is then the stale state.
	Suppressed bool
}

// RecordAt applies spend at the given event time, then re-evaluates the
// state. The returned decision honors the backoff rule.
func (t *Tracker) RecordAt(amount float64, at time.Time) Decision {
	t.window.Record(amount, at)
	return t.checkAt(at)
}

// CheckAt re-evaluates the state at the given event time without
// recording spend. Buckets may have aged out since the last write, so
// the state can flip on a pure read once the backoff permits it.
func (t *Tracker) CheckAt(at time.Time) Decision {
	return t.checkAt(at)
}

// State returns the current state without re-evaluating the window.
func (t *Tracker) State() State { return t.state }

// LastTransition returns the time of the last committed state flip and
// whether one has ever happened.
func (t *Tracker) LastTransition() (time.Time, bool) {
	return t.lastTransition, t.transitioned
}

// StaleAt reports whether the tracker carries no information worth
// keeping at the given time: its window is empty and no hysteresis hold
// is pending. A project still inside its backoff interval is never
// stale, since evicting it would forget a pinned state.
func (t *Tracker) StaleAt(at time.Time) bool {
	if t.inBackoff(at) {
		return false
	}
	return !t.window.Live(at)
}

func (t *Tracker) checkAt(at time.Time) Decision {
	desired := WithinBudget
	if t.window.Total(at) > t.cfg.Budget {
		desired = ExceedsBudget
	}
	if desired == t.state {
		return Decision{State: t.state}
	}
	if t.inBackoff(at) {
		// Flip suppressed; the stale state stays visible.
		return Decision{State: t.state, Suppressed: true}
	}
	t.state = desired
	t.lastTransition = at
	t.transitioned = true
	return Decision{State: t.state, Flipped: true}
}

func (t *Tracker) inBackoff(at time.Time) bool {
	return t.transitioned && at.Sub(t.lastTransition) < t.cfg.Backoff
}
