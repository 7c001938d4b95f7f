// Package lifecycle holds the service state machine vocabulary shared by the
// coordinator and the platform adapters that surface its state.
package lifecycle

import "time"

// DefaultTimeout bounds lifecycle hooks such as pinging the store at start.
const DefaultTimeout = 10 * time.Second

// State is a host-visible service state.
type State int

const (
	// Stopped is both the initial and the terminal state.
	Stopped State = iota
	StartPending
	Running
	StopPending
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case StartPending:
		return "StartPending"
	case Running:
		return "Running"
	case StopPending:
		return "StopPending"
	default:
		return "Unknown"
	}
}
