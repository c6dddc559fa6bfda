package engine

import "fmt"

// RunState is the engine lifecycle state. The lifecycle is
// Idle -> Running -> {StuckInLoop <-> Running} -> Halted, with Halted
// terminal for the session.
type RunState int

const (
	// StateIdle means no session is active; events and ticks are ignored.
	StateIdle RunState = iota

	// StateRunning means events dispatch normally.
	StateRunning

	// StateStuckInLoop means a handler is suspended mid-loop with its
	// resumption budget exhausted for the tick. Incoming events queue up.
	StateStuckInLoop

	// StateHalted means a runtime error stopped the session. No further
	// dispatch happens until a new engine is created.
	StateHalted
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStuckInLoop:
		return "StuckInLoop"
	case StateHalted:
		return "Halted"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}
