package vm

import "fmt"

// RuntimeError is a structured script runtime error. Script names the script
// the failing handler belongs to and Line is the compiled line of the failing
// statement; the scheduler resolves it to an original source line through the
// script's source map before surfacing it.
type RuntimeError struct {
	Script  string
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Script, e.Line, e.Message)
}

// errorf builds a RuntimeError at the runner's current statement line.
func (r *Runner) errorf(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Script:  r.script,
		Line:    r.line,
		Message: fmt.Sprintf(format, args...),
	}
}
