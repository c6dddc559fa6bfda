package vm

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hakutaku/hakoniwa/pkg/opcode"
)

// AudioPlayer is the audio surface available to scripts. The engine injects a
// concrete player; in headless mode it may be nil and audio builtins become
// no-ops.
type AudioPlayer interface {
	PlayMIDI(name string) error
	StopMIDI()
}

// ObjectHandle is the slice of the host object a handler may touch.
type ObjectHandle interface {
	ObjectName() string
	MoveTo(x, y float64)
}

// Builtin is a host function callable from scripts.
type Builtin func(r *Runner, args []any) (any, error)

// Host carries the process-wide pieces every runner shares: the logger, the
// audio player, and the builtin registry. One Host serves all objects.
type Host struct {
	log      *slog.Logger
	audio    AudioPlayer
	out      io.Writer
	builtins map[string]Builtin
}

// NewHost creates a Host with the stock builtins registered. audio may be nil.
func NewHost(log *slog.Logger, audio AudioPlayer) *Host {
	h := &Host{
		log:      log,
		audio:    audio,
		out:      os.Stdout,
		builtins: make(map[string]Builtin),
	}
	h.RegisterBuiltin("print", builtinPrint)
	h.RegisterBuiltin("moveto", builtinMoveTo)
	h.RegisterBuiltin("playmidi", builtinPlayMIDI)
	h.RegisterBuiltin("stopmidi", builtinStopMIDI)
	return h
}

// RegisterBuiltin registers a host function. Lookup is case-insensitive;
// names are stored lowercased.
func (h *Host) RegisterBuiltin(name string, fn Builtin) {
	h.builtins[strings.ToLower(name)] = fn
}

// SetOutput redirects print output, mainly for tests.
func (h *Host) SetOutput(w io.Writer) {
	h.out = w
}

// Logger returns the host logger.
func (h *Host) Logger() *slog.Logger { return h.log }

// execCall evaluates a Call opcode: resolve the builtin, evaluate arguments
// left to right, invoke. An unknown function or a failing builtin is a
// runtime error that halts the handler.
func (r *Runner) execCall(op opcode.OpCode) (any, error) {
	if len(op.Args) < 1 {
		return nil, r.errorf("malformed Call opcode: no function name")
	}
	name, ok := op.Args[0].(string)
	if !ok {
		return nil, r.errorf("Call function name must be string, got %T", op.Args[0])
	}

	builtin, ok := r.host.builtins[strings.ToLower(name)]
	if !ok {
		return nil, r.errorf("unknown function %q", name)
	}

	args := make([]any, 0, len(op.Args)-1)
	for i := 1; i < len(op.Args); i++ {
		v, err := r.evalValue(op.Args[i])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	result, err := builtin(r, args)
	if err != nil {
		return nil, r.errorf("%s: %v", name, err)
	}
	if result == nil {
		result = int64(0)
	}
	return result, nil
}

func builtinPrint(r *Runner, args []any) (any, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = toString(a)
	}
	fmt.Fprintln(r.host.out, strings.Join(parts, " "))
	return nil, nil
}

func builtinMoveTo(r *Runner, args []any) (any, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	x, ok := toFloat64(args[0])
	if !ok {
		return nil, fmt.Errorf("x must be numeric, got %T", args[0])
	}
	y, ok := toFloat64(args[1])
	if !ok {
		return nil, fmt.Errorf("y must be numeric, got %T", args[1])
	}
	if r.object == nil {
		return nil, fmt.Errorf("no bound object")
	}
	r.object.MoveTo(x, y)
	return nil, nil
}

func builtinPlayMIDI(r *Runner, args []any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("expected a file name")
	}
	name := toString(args[0])
	if r.host.audio == nil {
		r.host.log.Debug("audio disabled, skipping playmidi", "file", name)
		return nil, nil
	}
	if err := r.host.audio.PlayMIDI(name); err != nil {
		return nil, err
	}
	return nil, nil
}

func builtinStopMIDI(r *Runner, args []any) (any, error) {
	if r.host.audio != nil {
		r.host.audio.StopMIDI()
	}
	return nil, nil
}
