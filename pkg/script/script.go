// Package script holds the compiled-script artifact consumed by the scheduler:
// per-event handler bodies, the sparse compiled-to-original source map, and the
// loader that reads script sources from disk.
package script

import (
	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

// Script is a compiled script artifact attached to an object. Name identifies
// the script in diagnostics and in loop invocation keys.
type Script struct {
	Name     string
	Handlers map[string][]opcode.OpCode
	Source   SourceMap
}

// Handler returns the body for the named event, or nil if the script does not
// define a handler for it.
func (s *Script) Handler(event string) []opcode.OpCode {
	if s == nil {
		return nil
	}
	return s.Handlers[event]
}

// SourceMap maps compiled line numbers to original source line numbers.
// The map is sparse: only lines that begin a statement carry an entry.
type SourceMap map[int]int

// ResolveOriginalLine returns the original source line for a compiled line.
// When the compiled line has no entry, the nearest mapped line at or before it
// is used instead. The second result is false when no line at or before the
// reported one is mapped.
func (m SourceMap) ResolveOriginalLine(compiledLine int) (int, bool) {
	for line := compiledLine; line >= 1; line-- {
		if orig, ok := m[line]; ok {
			return orig, true
		}
	}
	return 0, false
}
