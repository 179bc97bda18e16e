// SPDX-License-Identifier: MPL-2.0

package registry

import "fmt"

const (
	// StateIdle is the state before any call is made.
	StateIdle State = iota
	// StateSlotRequested is entered when the slot request is sent.
	StateSlotRequested
	// StateUploading is entered before every PUT attempt.
	StateUploading
	// StateFinalizing is entered when the finalize call is sent.
	StateFinalizing
	// StateDone is terminal: the store accepted the package.
	StateDone
	// StateFailed is terminal: some phase failed.
	StateFailed
)

// State is a publish attempt's position in the protocol.
type State int

// TransitionFunc observes every accepted state change.
type TransitionFunc func(from, to State)

var allowedTransitions = map[State][]State{
	StateIdle:          {StateSlotRequested, StateFailed},
	StateSlotRequested: {StateUploading, StateFailed},
	StateUploading:     {StateUploading, StateFinalizing, StateFailed},
	StateFinalizing:    {StateDone, StateFailed},
}

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSlotRequested:
		return "slot-requested"
	case StateUploading:
		return "uploading"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool { return s == StateDone || s == StateFailed }

// machine tracks one attempt. It is not safe for concurrent use; an attempt
// runs on a single goroutine.
type machine struct {
	state   State
	observe TransitionFunc
}

func newMachine(observe TransitionFunc) *machine {
	return &machine{state: StateIdle, observe: observe}
}

func (m *machine) to(next State) error {
	for _, allowed := range allowedTransitions[m.state] {
		if allowed == next {
			prev := m.state
			m.state = next
			if m.observe != nil {
				m.observe(prev, next)
			}
			return nil
		}
	}
	return &InvalidTransitionError{From: m.state, To: next}
}

// fail moves to StateFailed unless the attempt already ended.
func (m *machine) fail() {
	if !m.state.IsTerminal() {
		_ = m.to(StateFailed)
	}
}
