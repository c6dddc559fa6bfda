package vm

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

// countingLoopBody builds: i = 0; while (i < n) { i = i + 1 }
func countingLoopBody(n int64) []opcode.OpCode {
	return []opcode.OpCode{
		assign(1, "i", int64(0)),
		whileLoop(2, 4, binop("<", opcode.Variable("i"), n),
			assign(3, "i", binop("+", opcode.Variable("i"), int64(1))),
		),
	}
}

func TestRunnerCheckpointProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("counting loop yields n LoopContinue, one LoopExit, then EventEnd",
		prop.ForAll(
			func(n int) bool {
				r := newPropRunner(countingLoopBody(int64(n)))

				for iter := 0; iter < n; iter++ {
					sig, err := r.Step()
					if err != nil || sig.Kind != SignalLoopContinue {
						return false
					}
				}
				sig, err := r.Step()
				if err != nil || sig.Kind != SignalLoopExit {
					return false
				}
				sig, err = r.Step()
				if err != nil || sig.Kind != SignalEventEnd {
					return false
				}

				i, _ := r.Scope().Get("i")
				return i == int64(n)
			},
			gen.IntRange(0, 50),
		))

	properties.Property("straight-line handlers complete in a single step",
		prop.ForAll(
			func(n int) bool {
				body := make([]opcode.OpCode, 0, n)
				for i := 0; i < n; i++ {
					body = append(body, assign(i+1, fmt.Sprintf("v%d", i), int64(i)))
				}
				r := newPropRunner(body)

				sig, err := r.Step()
				if err != nil || sig.Kind != SignalEventEnd {
					return false
				}
				for i := 0; i < n; i++ {
					if v, _ := r.Scope().Get(fmt.Sprintf("v%d", i)); v != int64(i) {
						return false
					}
				}
				return true
			},
			gen.IntRange(1, 30),
		))

	properties.Property("loop signals always carry the loop's own key",
		prop.ForAll(
			func(n int) bool {
				r := newPropRunner(countingLoopBody(int64(n)))
				wantKey := LoopKey{Script: "prop.hks", StartLine: 2, EndLine: 4}

				for {
					sig, err := r.Step()
					if err != nil {
						return false
					}
					if sig.Kind == SignalEventEnd {
						return true
					}
					if sig.Loop != wantKey {
						return false
					}
				}
			},
			gen.IntRange(0, 20),
		))

	properties.TestingRun(t)
}

func newPropRunner(body []opcode.OpCode) *Runner {
	return NewRunner(newTestHost(), "prop.hks", body, NewScope(nil), &testObject{name: "prop"}, nil)
}
