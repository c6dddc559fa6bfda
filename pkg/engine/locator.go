package engine

import (
	"errors"

	"github.com/hakutaku/hakoniwa/pkg/script"
	"github.com/hakutaku/hakoniwa/pkg/vm"
)

// RuntimeErrorInfo is the halt diagnosis handed to the presentation layer.
// Line is the original source line recovered through the script's source map;
// HasLine is false when no compiled line at or before the reported one is
// mapped, in which case Line is meaningless.
type RuntimeErrorInfo struct {
	Script  string
	Line    int
	HasLine bool
	Message string
}

// StuckLoopInfo names the loop believed responsible for a stuck episode:
// the entry with the highest resumption count at diagnosis time.
type StuckLoopInfo struct {
	Script    string
	StartLine int
	EndLine   int
	Count     int
}

// locateError resolves a runner error to original source coordinates. The
// reported compiled line is scanned backward toward line 1 for the nearest
// source-map entry; a miss leaves the line unset rather than guessing.
func locateError(sm script.SourceMap, err error) RuntimeErrorInfo {
	var rtErr *vm.RuntimeError
	if !errors.As(err, &rtErr) {
		return RuntimeErrorInfo{Message: err.Error()}
	}

	info := RuntimeErrorInfo{
		Script:  rtErr.Script,
		Message: rtErr.Message,
	}
	if line, ok := sm.ResolveOriginalLine(rtErr.Line); ok {
		info.Line = line
		info.HasLine = true
	}
	return info
}
