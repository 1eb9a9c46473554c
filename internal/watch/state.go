package watch

import "errors"

// ErrLoopDone is returned by Start and Run on a loop that already stopped or
// failed. Loops are single-use; build a new one to reconnect.
var ErrLoopDone = errors.New("watch loop already finished")

// State is the run state of a Loop.
type State int32

const (
	StateIdle State = iota
	StateConnected
	StatePolling
	StateDispatching
	StateStopped
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StatePolling:
		return "polling"
	case StateDispatching:
		return "dispatching"
	case StateStopped:
		return "stopped"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether the loop can no longer run.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateErrored
}
