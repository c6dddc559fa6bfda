package vm

import (
	"strconv"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

// maxEventArgs is the number of positional arguments bound for every handler
// invocation; missing arguments are bound as 0.
const maxEventArgs = 4

// ctrl is the control-flow outcome of a single statement.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
)

// frame is one entry of the runner's execution stack. A block frame walks a
// statement list; a loop frame owns one loop invocation and re-enters its body
// once per iteration.
type frame struct {
	loop bool

	// block frame
	ops []opcode.OpCode
	pc  int

	// loop frame
	cond   any
	body   []opcode.OpCode
	post   []opcode.OpCode
	key    LoopKey
	inBody bool
}

// Runner executes one handler invocation cooperatively. Each Step call runs
// until the next checkpoint: the end of a loop iteration, a loop exit, or the
// end of the handler body. Straight-line statements between checkpoints run
// atomically.
//
// A Runner is single-use. After Step reports SignalEventEnd or an error the
// runner stays finished and further Step calls report SignalEventEnd.
type Runner struct {
	host   *Host
	script string
	object ObjectHandle
	scope  *Scope
	stack  []*frame
	line   int
	done   bool
}

// NewRunner prepares a handler invocation. The handler body runs in a fresh
// scope whose parent is the object scope, with the positional event arguments
// bound as arg1 through arg4.
func NewRunner(host *Host, script string, body []opcode.OpCode, objectScope *Scope, object ObjectHandle, args []any) *Runner {
	local := NewScope(objectScope)
	for i := 0; i < maxEventArgs; i++ {
		var v any = int64(0)
		if i < len(args) && args[i] != nil {
			v = args[i]
		}
		local.SetLocal(argName(i), v)
	}

	r := &Runner{
		host:   host,
		script: script,
		object: object,
		scope:  local,
	}
	r.push(&frame{ops: body})
	return r
}

func argName(i int) string {
	return "arg" + strconv.Itoa(i+1)
}

// Script returns the script identity diagnostics attribute to.
func (r *Runner) Script() string { return r.script }

// Object returns the object the handler is bound to.
func (r *Runner) Object() ObjectHandle { return r.object }

// Scope returns the handler's local scope.
func (r *Runner) Scope() *Scope { return r.scope }

// Done reports whether the runner has finished, normally or with an error.
func (r *Runner) Done() bool { return r.done }

// Step resumes execution until the next checkpoint. It returns the checkpoint
// signal, or a *RuntimeError when a statement fails. A failed runner does not
// resume.
func (r *Runner) Step() (Signal, error) {
	if r.done {
		return Signal{Kind: SignalEventEnd}, nil
	}

	for {
		if len(r.stack) == 0 {
			r.done = true
			return Signal{Kind: SignalEventEnd}, nil
		}

		f := r.top()
		if f.loop {
			if f.inBody {
				// The body block frame has been popped: one iteration
				// is complete. Run the post block, then suspend.
				if err := r.execBlockAtomic(f.post); err != nil {
					return r.fail(err)
				}
				f.inBody = false
				return Signal{Kind: SignalLoopContinue, Loop: f.key}, nil
			}

			v, err := r.evalValue(f.cond)
			if err != nil {
				return r.fail(err)
			}
			if !toBool(v) {
				r.pop()
				return Signal{Kind: SignalLoopExit, Loop: f.key}, nil
			}
			f.inBody = true
			r.push(&frame{ops: f.body})
			continue
		}

		if f.pc >= len(f.ops) {
			r.pop()
			continue
		}
		op := f.ops[f.pc]
		f.pc++

		c, err := r.exec(op)
		if err != nil {
			return r.fail(err)
		}
		switch c {
		case ctrlBreak:
			sig, err := r.breakLoop()
			if err != nil {
				return r.fail(err)
			}
			return sig, nil
		case ctrlContinue:
			sig, err := r.continueLoop()
			if err != nil {
				return r.fail(err)
			}
			return sig, nil
		}
	}
}

func (r *Runner) fail(err error) (Signal, error) {
	r.done = true
	return Signal{}, err
}

// exec executes one statement. Loops and branches push frames instead of
// recursing so the runner can suspend inside them.
func (r *Runner) exec(op opcode.OpCode) (ctrl, error) {
	if op.Line > 0 {
		r.line = op.Line
	}

	switch op.Cmd {
	case opcode.Assign:
		return ctrlNone, r.execAssign(op)

	case opcode.Call:
		_, err := r.execCall(op)
		return ctrlNone, err

	case opcode.If:
		if len(op.Args) < 2 {
			return ctrlNone, r.errorf("malformed If opcode: %d args", len(op.Args))
		}
		v, err := r.evalValue(op.Args[0])
		if err != nil {
			return ctrlNone, err
		}
		var branch []opcode.OpCode
		if toBool(v) {
			branch, _ = op.Args[1].([]opcode.OpCode)
		} else if len(op.Args) > 2 {
			branch, _ = op.Args[2].([]opcode.OpCode)
		}
		if len(branch) > 0 {
			r.push(&frame{ops: branch})
		}
		return ctrlNone, nil

	case opcode.While:
		if len(op.Args) < 2 {
			return ctrlNone, r.errorf("malformed While opcode: %d args", len(op.Args))
		}
		body, _ := op.Args[1].([]opcode.OpCode)
		r.push(&frame{
			loop: true,
			cond: op.Args[0],
			body: body,
			key:  r.loopKey(op),
		})
		return ctrlNone, nil

	case opcode.For:
		if len(op.Args) < 4 {
			return ctrlNone, r.errorf("malformed For opcode: %d args", len(op.Args))
		}
		init, _ := op.Args[0].([]opcode.OpCode)
		if err := r.execBlockAtomic(init); err != nil {
			return ctrlNone, err
		}
		post, _ := op.Args[2].([]opcode.OpCode)
		body, _ := op.Args[3].([]opcode.OpCode)
		r.push(&frame{
			loop: true,
			cond: op.Args[1],
			body: body,
			post: post,
			key:  r.loopKey(op),
		})
		return ctrlNone, nil

	case opcode.Break:
		return ctrlBreak, nil

	case opcode.Continue:
		return ctrlContinue, nil

	default:
		return ctrlNone, r.errorf("unknown opcode %q", op.Cmd)
	}
}

// loopKey builds the invocation key for a loop opcode. EndLine falls back to
// the start line when the compiler did not delimit the loop.
func (r *Runner) loopKey(op opcode.OpCode) LoopKey {
	end := op.EndLine
	if end == 0 {
		end = op.Line
	}
	return LoopKey{Script: r.script, StartLine: op.Line, EndLine: end}
}

func (r *Runner) execAssign(op opcode.OpCode) error {
	if len(op.Args) < 2 {
		return r.errorf("malformed Assign opcode: %d args", len(op.Args))
	}
	name, ok := op.Args[0].(opcode.Variable)
	if !ok {
		return r.errorf("assignment target must be a variable, got %T", op.Args[0])
	}
	value, err := r.evalValue(op.Args[1])
	if err != nil {
		return err
	}
	r.scope.Set(string(name), value)
	return nil
}

// breakLoop unwinds to the innermost loop frame, pops it, and reports the
// loop as exited.
func (r *Runner) breakLoop() (Signal, error) {
	for len(r.stack) > 0 {
		f := r.top()
		r.pop()
		if f.loop {
			return Signal{Kind: SignalLoopExit, Loop: f.key}, nil
		}
	}
	return Signal{}, r.errorf("break outside loop")
}

// continueLoop unwinds to the innermost loop frame, finishes the iteration
// (post block), and suspends at the iteration checkpoint.
func (r *Runner) continueLoop() (Signal, error) {
	for len(r.stack) > 0 {
		f := r.top()
		if f.loop {
			if err := r.execBlockAtomic(f.post); err != nil {
				return Signal{}, err
			}
			f.inBody = false
			return Signal{Kind: SignalLoopContinue, Loop: f.key}, nil
		}
		r.pop()
	}
	return Signal{}, r.errorf("continue outside loop")
}

// execBlockAtomic runs a statement list without suspending. It serves loop
// init and post blocks, which the compiler restricts to straight-line code.
func (r *Runner) execBlockAtomic(ops []opcode.OpCode) error {
	for _, op := range ops {
		if op.Line > 0 {
			r.line = op.Line
		}
		switch op.Cmd {
		case opcode.Assign:
			if err := r.execAssign(op); err != nil {
				return err
			}
		case opcode.Call:
			if _, err := r.execCall(op); err != nil {
				return err
			}
		case opcode.If:
			if len(op.Args) < 2 {
				return r.errorf("malformed If opcode: %d args", len(op.Args))
			}
			v, err := r.evalValue(op.Args[0])
			if err != nil {
				return err
			}
			var branch []opcode.OpCode
			if toBool(v) {
				branch, _ = op.Args[1].([]opcode.OpCode)
			} else if len(op.Args) > 2 {
				branch, _ = op.Args[2].([]opcode.OpCode)
			}
			if err := r.execBlockAtomic(branch); err != nil {
				return err
			}
		default:
			return r.errorf("opcode %q not allowed in loop init/post block", op.Cmd)
		}
	}
	return nil
}

func (r *Runner) push(f *frame) {
	r.stack = append(r.stack, f)
}

func (r *Runner) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Runner) top() *frame {
	return r.stack[len(r.stack)-1]
}
