package engine

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
	"github.com/hakutaku/hakoniwa/pkg/vm"
)

// trackerInvariantHolds checks that the loop budget tracker is non-empty iff
// the engine is stuck, the externally observable invariant after every tick.
func trackerInvariantHolds(e *Engine) bool {
	if e.State() == StateStuckInLoop {
		return e.Tracker().Len() > 0
	}
	return e.Tracker().Len() == 0
}

func TestSchedulerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("tracker is non-empty iff stuck, after every tick",
		prop.ForAll(
			func(limit int) bool {
				e := newTestEngine()
				obj := &Object{Name: "walker", Script: newScript("walker.hks", map[string][]opcode.OpCode{
					UpdateEvent: {
						whileLoop(1, 3, binop("<", v("n"), int64(limit)),
							assign(2, "n", binop("+", v("n"), int64(1))),
						),
					},
				})}
				e.AddObject(obj)
				obj.Scope().SetLocal("n", int64(0))
				e.Start()

				// Enough ticks to finish the loop regardless of limit.
				for i := 0; i < limit/1000+2; i++ {
					e.Update()
					if !trackerInvariantHolds(e) {
						return false
					}
				}
				return e.State() == StateRunning
			},
			gen.IntRange(0, 5000),
		))

	properties.Property("queued events drain strictly in arrival order",
		prop.ForAll(
			func(count int) bool {
				log := discardLogger()
				host := vm.NewHost(log, nil)
				var recorded []string
				host.RegisterBuiltin("record", func(r *vm.Runner, args []any) (any, error) {
					recorded = append(recorded, fmt.Sprint(args[0]))
					return nil, nil
				})
				e := NewEngine(host, log)

				blocker := addGated(e, "blocker")
				target := &Object{Name: "target", Script: newScript("target.hks", map[string][]opcode.OpCode{
					"ping": {call(1, "record", opcode.Variable("arg1"))},
				})}
				e.AddObject(target)
				e.Start()

				e.Update()
				if e.State() != StateStuckInLoop {
					return false
				}

				for i := 0; i < count; i++ {
					e.CallObjectEvent(target, "ping", fmt.Sprintf("ev-%d", i))
				}

				blocker.Scope().Set("gate", int64(1))
				e.Update()

				if e.State() != StateRunning || len(recorded) < count {
					return false
				}
				for i := 0; i < count; i++ {
					if recorded[i] != fmt.Sprintf("ev-%d", i) {
						return false
					}
				}
				return true
			},
			gen.IntRange(0, 30),
		))

	properties.Property("handlers without loops never leave the Running state",
		prop.ForAll(
			func(statements int) bool {
				e := newTestEngine()
				body := make([]opcode.OpCode, 0, statements)
				for i := 0; i < statements; i++ {
					body = append(body, assign(i+1, fmt.Sprintf("s%d", i), int64(i)))
				}
				obj := &Object{Name: "flat", Script: newScript("flat.hks", map[string][]opcode.OpCode{
					UpdateEvent: body,
				})}
				e.AddObject(obj)
				e.Start()

				e.Update()
				return e.State() == StateRunning && e.PendingCount() == 0 && e.Tracker().Len() == 0
			},
			gen.IntRange(1, 50),
		))

	properties.TestingRun(t)
}
