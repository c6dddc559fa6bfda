// Package engine implements the cooperative script-execution scheduler: the
// object registry, the loop budget tracker, the pending event queue, and the
// per-tick driver that keeps the host frame loop alive while user scripts run
// unbounded loops.
package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hakutaku/hakoniwa/pkg/vm"
)

const (
	// maxLoopYields bounds how many times one tryContinue call resumes the
	// in-flight handler. The bound guarantees the host frame loop makes
	// forward progress; it is not a fairness mechanism.
	maxLoopYields = 1000

	// loopStuckWaitDuration is how long a stuck episode must last before
	// the engine diagnoses which loop is responsible.
	loopStuckWaitDuration = 3 * time.Second
)

// UpdateEvent is the event dispatched to every object once per tick.
const UpdateEvent = "update"

// invocation is the single in-flight handler execution.
type invocation struct {
	runner *vm.Runner
	object *Object
	event  string
}

// Engine owns the scene objects and schedules their event handlers
// cooperatively on the host goroutine. All methods must be called from that
// one goroutine.
type Engine struct {
	log  *slog.Logger
	host *vm.Host

	objects []*Object
	state   RunState
	tracker *LoopTracker
	pending pendingQueue

	inflight *invocation

	stuckSince time.Time
	stuckDiag  *StuckLoopInfo
	runtimeErr *RuntimeErrorInfo

	// now is replaceable so tests can drive the stuck-episode clock.
	now func() time.Time
}

// NewEngine creates an engine in the Idle state.
func NewEngine(host *vm.Host, log *slog.Logger) *Engine {
	return &Engine{
		log:     log,
		host:    host,
		state:   StateIdle,
		tracker: NewLoopTracker(),
		now:     time.Now,
	}
}

// Start begins the session. Events and ticks are ignored until Start is
// called, and a halted engine cannot be restarted.
func (e *Engine) Start() {
	if e.state != StateIdle {
		return
	}
	e.state = StateRunning
	e.log.Info("engine started", "objects", len(e.objects))
}

// State returns the current run state.
func (e *Engine) State() RunState { return e.state }

// RuntimeErrorInfo returns the halt diagnosis, or nil unless Halted.
func (e *Engine) RuntimeErrorInfo() *RuntimeErrorInfo { return e.runtimeErr }

// StuckLoopInfo returns the stuck-loop diagnosis for the current episode, or
// nil if none has been computed.
func (e *Engine) StuckLoopInfo() *StuckLoopInfo { return e.stuckDiag }

// Tracker exposes the loop budget tracker for diagnostics.
func (e *Engine) Tracker() *LoopTracker { return e.tracker }

// PendingCount returns how many events are waiting out a stuck episode.
func (e *Engine) PendingCount() int { return e.pending.len() }

// AddObject registers an object and prepares its script instance scope.
// Iteration order for the per-tick update sweep is insertion order.
func (e *Engine) AddObject(obj *Object) {
	obj.scope = vm.NewScope(nil)
	e.objects = append(e.objects, obj)
	e.log.Debug("object added", "name", obj.Name, "kind", obj.Kind.String())
}

// RemoveObject unregisters an object. The order of the remaining objects is
// unchanged.
func (e *Engine) RemoveObject(obj *Object) {
	for i, o := range e.objects {
		if o == obj {
			e.objects = append(e.objects[:i], e.objects[i+1:]...)
			e.log.Debug("object removed", "name", obj.Name)
			return
		}
	}
}

// Objects returns the registered objects in insertion order. The slice is a
// copy; the objects are shared.
func (e *Engine) Objects() []*Object {
	return slices.Clone(e.objects)
}

// CallObjectEvent requests dispatch of an event. It is a silent no-op when
// the engine has no session or is halted, when the object has no script, or
// when the script has no handler for the event. While stuck, the event is
// queued and delivered in order once the engine resumes.
func (e *Engine) CallObjectEvent(obj *Object, event string, args ...any) {
	if e.state == StateIdle || e.state == StateHalted {
		return
	}
	if obj == nil || obj.Script == nil || obj.Script.Handler(event) == nil {
		return
	}

	if e.state == StateStuckInLoop {
		e.pending.enqueue(obj, event, args)
		e.log.Debug("event queued while stuck", "object", obj.Name, "event", event, "queued", e.pending.len())
		return
	}

	e.dispatch(obj, event, args)
}

// Update advances one scheduler tick: continue the stuck handler if there is
// one, drain the pending queue, then dispatch "update" to every object. Each
// stage stops the tick early if the engine leaves the Running state.
func (e *Engine) Update() {
	switch e.state {
	case StateIdle, StateHalted:
		return
	case StateStuckInLoop:
		e.tryContinue()
		if e.state == StateStuckInLoop {
			e.maybeDiagnose()
			return
		}
		if e.state != StateRunning {
			return
		}
	}

	for e.state == StateRunning {
		ev, ok := e.pending.pop()
		if !ok {
			break
		}
		e.dispatch(ev.object, ev.event, ev.args)
	}
	if e.state != StateRunning {
		return
	}

	for _, obj := range e.Objects() {
		if !e.contains(obj) {
			continue
		}
		e.CallObjectEvent(obj, UpdateEvent)
		if e.state != StateRunning {
			// Remaining objects are skipped for this tick, not queued.
			return
		}
	}
}

func (e *Engine) contains(obj *Object) bool {
	return slices.Contains(e.objects, obj)
}

// dispatch starts a handler invocation and drives it under the tick budget.
func (e *Engine) dispatch(obj *Object, event string, args []any) {
	body := obj.Script.Handler(event)
	if body == nil {
		return
	}
	e.inflight = &invocation{
		runner: vm.NewRunner(e.host, obj.Script.Name, body, obj.scope, obj, args),
		object: obj,
		event:  event,
	}
	e.tryContinue()
}

// tryContinue resumes the in-flight handler until it completes, fails, or
// spends maxLoopYields loop iterations, updating the loop budget tracker at
// every checkpoint. It leaves the engine Running when the handler finished,
// StuckInLoop when the budget ran out, or Halted on a runtime error.
func (e *Engine) tryContinue() {
	inv := e.inflight
	if inv == nil {
		return
	}

	yields := 0
	for {
		sig, err := inv.runner.Step()
		if err != nil {
			e.halt(inv, err)
			return
		}

		switch sig.Kind {
		case vm.SignalLoopContinue:
			e.tracker.Increment(sig.Loop)
			yields++
			if yields >= maxLoopYields {
				// Budget exhaustion is only observable at a loop
				// checkpoint, so the exhausted loop is still open
				// and the tracker is never empty while stuck.
				e.markStuck(inv)
				return
			}
		case vm.SignalLoopExit:
			e.tracker.Clear(sig.Loop)
		case vm.SignalEventEnd:
			e.finish(inv)
			return
		default:
			panic(fmt.Sprintf("engine: unknown runner signal %v", sig.Kind))
		}
	}
}

// finish completes the in-flight invocation. The tracker is reset wholesale
// rather than trusting per-loop exit signals, guarding against entries leaked
// by abnormal loop exits.
func (e *Engine) finish(inv *invocation) {
	e.tracker.ClearAll()
	e.inflight = nil

	if e.state == StateStuckInLoop {
		e.state = StateRunning
		e.stuckSince = time.Time{}
		e.stuckDiag = nil
		e.log.Info("stuck handler finished, resuming", "object", inv.object.Name, "event", inv.event)
	}
}

// markStuck records budget exhaustion. The episode timestamp is set only on
// the Running -> StuckInLoop transition so the 3-second diagnosis clock spans
// the whole episode.
func (e *Engine) markStuck(inv *invocation) {
	if e.state == StateStuckInLoop {
		return
	}
	e.state = StateStuckInLoop
	e.stuckSince = e.now()
	e.log.Warn("handler exhausted loop budget", "object", inv.object.Name, "event", inv.event, "budget", maxLoopYields)
}

// maybeDiagnose computes the stuck-loop diagnosis once per episode, after the
// episode has lasted loopStuckWaitDuration.
func (e *Engine) maybeDiagnose() {
	if e.stuckDiag != nil {
		return
	}
	if e.now().Sub(e.stuckSince) < loopStuckWaitDuration {
		return
	}
	key, count, ok := e.tracker.Busiest()
	if !ok {
		return
	}
	e.stuckDiag = &StuckLoopInfo{
		Script:    key.Script,
		StartLine: key.StartLine,
		EndLine:   key.EndLine,
		Count:     count,
	}
	e.log.Warn("stuck loop diagnosed",
		"script", key.Script,
		"startLine", key.StartLine,
		"endLine", key.EndLine,
		"count", count)
}

// halt stops the session permanently and records the located error.
func (e *Engine) halt(inv *invocation, err error) {
	e.state = StateHalted
	e.tracker.ClearAll()
	e.pending.clear()
	e.inflight = nil
	e.stuckSince = time.Time{}
	e.stuckDiag = nil

	info := locateError(inv.object.Script.Source, err)
	e.runtimeErr = &info
	e.log.Error("runtime error, engine halted",
		"script", info.Script,
		"line", info.Line,
		"hasLine", info.HasLine,
		"message", info.Message,
		"object", inv.object.Name,
		"event", inv.event)
}
