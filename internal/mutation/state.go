package mutation

import (
	"errors"
	"fmt"
	"sync"
)

// State is the lifecycle state of a single mutation
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateRefetching State = "refetching"
	StateFailed     State = "failed"
)

// ErrIllegalTransition is returned when a transition is not part of the state machine
var ErrIllegalTransition = errors.New("illegal state transition")

var transitions = map[State][]State{
	StateIdle:       {StateSubmitting},
	StateSubmitting: {StateConfirmed, StateFailed},
	StateConfirmed:  {StateRefetching},
	StateRefetching: {StateIdle},
	StateFailed:     {StateIdle},
}

// TransitionFunc observes state changes
type TransitionFunc func(from, to State)

// Tracker enforces Idle → Submitting → {Confirmed → Refetching → Idle} | {Failed → Idle}
type Tracker struct {
	mu       sync.Mutex
	state    State
	observer TransitionFunc
}

// NewTracker creates a tracker in the idle state
func NewTracker(observer TransitionFunc) *Tracker {
	return &Tracker{state: StateIdle, observer: observer}
}

// State returns the current state
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Transition moves to the given state, rejecting transitions outside the state machine
func (t *Tracker) Transition(to State) error {
	t.mu.Lock()
	from := t.state
	allowed := false
	for _, s := range transitions[from] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	t.state = to
	observer := t.observer
	t.mu.Unlock()

	if observer != nil {
		observer(from, to)
	}
	return nil
}
