// File: timer/state.go
// Author: momentics <momentics@gmail.com>

package timer

import (
	"fmt"

	"github.com/momentics/hioload-aio/api"
)

// Mode selects one-shot or repeating delivery.
type Mode int

const (
	// OneShot fires once after the interval.
	OneShot Mode = iota
	// Repeating fires every interval until stopped or ended.
	Repeating
)

// Timeout and Interval are alternative names for OneShot and Repeating.
const (
	Timeout  = OneShot
	Interval = Repeating
)

func (m Mode) String() string {
	switch m {
	case OneShot:
		return "oneshot"
	case Repeating:
		return "repeating"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// State is the lifecycle state of a Timer.
type State int

const (
	Paused State = iota
	Running
	Stopped
	Ended
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StateError reports an operation attempted in a state that does not allow it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("timer %s: not allowed in state %s", e.Op, e.State)
}

// Unwrap returns api.ErrInvalidStateTransition.
func (e *StateError) Unwrap() error {
	return api.ErrInvalidStateTransition
}
