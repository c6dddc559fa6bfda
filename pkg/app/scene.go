package app

import (
	"github.com/hakutaku/hakoniwa/pkg/engine"
	"github.com/hakutaku/hakoniwa/pkg/opcode"
	"github.com/hakutaku/hakoniwa/pkg/script"
)

// Demo scene: a bouncing ball sprite plus a caption, with handlers built
// directly from opcodes so the binary runs without an external compiler.

const (
	demoScreenW = 640
	demoScreenH = 480
	ballSize    = 16
)

func assignOp(line int, name string, value any) opcode.OpCode {
	return opcode.OpCode{Cmd: opcode.Assign, Args: []any{opcode.Variable(name), value}, Line: line}
}

func callOp(line int, fn string, args ...any) opcode.OpCode {
	return opcode.OpCode{Cmd: opcode.Call, Args: append([]any{fn}, args...), Line: line}
}

func binOp(operator string, left, right any) opcode.OpCode {
	return opcode.OpCode{Cmd: opcode.BinaryOp, Args: []any{operator, left, right}}
}

func ifOp(line int, cond any, then []opcode.OpCode) opcode.OpCode {
	return opcode.OpCode{Cmd: opcode.If, Args: []any{cond, then}, Line: line}
}

// ballScript moves the ball by (dx, dy) every tick and flips the direction at
// the screen edges. The state lives in the object scope, seeded on install.
func ballScript() *script.Script {
	update := []opcode.OpCode{
		assignOp(1, "px", binOp("+", opcode.Variable("px"), opcode.Variable("dx"))),
		assignOp(2, "py", binOp("+", opcode.Variable("py"), opcode.Variable("dy"))),
		ifOp(3, binOp(">", opcode.Variable("px"), int64(demoScreenW-ballSize)), []opcode.OpCode{
			assignOp(4, "dx", binOp("-", int64(0), opcode.Variable("speed"))),
		}),
		ifOp(5, binOp("<", opcode.Variable("px"), int64(0)), []opcode.OpCode{
			assignOp(6, "dx", opcode.Variable("speed")),
		}),
		ifOp(7, binOp(">", opcode.Variable("py"), int64(demoScreenH-ballSize)), []opcode.OpCode{
			assignOp(8, "dy", binOp("-", int64(0), opcode.Variable("speed"))),
		}),
		ifOp(9, binOp("<", opcode.Variable("py"), int64(0)), []opcode.OpCode{
			assignOp(10, "dy", opcode.Variable("speed")),
		}),
		callOp(11, "moveto", opcode.Variable("px"), opcode.Variable("py")),
	}

	return &script.Script{
		Name: "ball.hks",
		Handlers: map[string][]opcode.OpCode{
			engine.UpdateEvent: update,
		},
		Source: script.SourceMap{
			1: 1, 2: 2, 3: 4, 4: 5, 5: 7, 6: 8, 7: 10, 8: 11, 9: 13, 10: 14, 11: 16,
		},
	}
}

// InstallDemoScene registers the demo objects and seeds their script state.
func InstallDemoScene(e *engine.Engine) {
	ball := &engine.Object{
		Name:   "ball",
		Kind:   engine.KindSprite,
		X:      demoScreenW / 2,
		Y:      demoScreenH / 2,
		Script: ballScript(),
	}
	e.AddObject(ball)
	scope := ball.Scope()
	scope.SetLocal("px", ball.X)
	scope.SetLocal("py", ball.Y)
	scope.SetLocal("speed", int64(3))
	scope.SetLocal("dx", int64(3))
	scope.SetLocal("dy", int64(2))

	caption := &engine.Object{
		Name: "caption",
		Kind: engine.KindText,
		X:    16,
		Y:    demoScreenH - 16,
		Text: "hakoniwa demo scene",
	}
	e.AddObject(caption)
}
