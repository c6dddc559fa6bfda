package vm

import "fmt"

// LoopKey identifies one loop invocation: the script it belongs to plus the
// compiled line range of the loop. The scheduler uses it to track how often a
// suspended loop has been resumed.
type LoopKey struct {
	Script    string
	StartLine int
	EndLine   int
}

func (k LoopKey) String() string {
	return fmt.Sprintf("%s:%d-%d", k.Script, k.StartLine, k.EndLine)
}

// SignalKind tags the reason a Step call returned.
type SignalKind int

const (
	// SignalEventEnd means the handler body ran to completion.
	SignalEventEnd SignalKind = iota

	// SignalLoopContinue means execution suspended at the end of a loop
	// iteration; the loop will run another iteration when resumed.
	SignalLoopContinue

	// SignalLoopExit means a loop finished, either because its condition
	// turned false or because it hit a break.
	SignalLoopExit
)

func (k SignalKind) String() string {
	switch k {
	case SignalEventEnd:
		return "EventEnd"
	case SignalLoopContinue:
		return "LoopContinue"
	case SignalLoopExit:
		return "LoopExit"
	default:
		return fmt.Sprintf("SignalKind(%d)", int(k))
	}
}

// Signal is the checkpoint report returned by Runner.Step. Loop is set for
// LoopContinue and LoopExit and zero for EventEnd.
type Signal struct {
	Kind SignalKind
	Loop LoopKey
}
