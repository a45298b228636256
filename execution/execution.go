package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/race-explorer/racegraph/emit"
	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/metrics"
	"github.com/race-explorer/racegraph/process"
)

// Path is the ordered record of which process was stepped at each step.
type Path []process.ID

// Factory builds a fresh, populated Execution. It must be pure and
// idempotent, and must not hold references to any previous Execution's
// state — see spec.md §6's ExecutionFactory contract.
type Factory func() (*Execution, error)

// Execution owns the live processes of one interleaving walk: it advances
// exactly one process per Next call, records the path, and tracks the
// current ExecutionState. See spec.md §4.3.
type Execution struct {
	procs              map[process.ID]process.Process
	onTerminateProcess map[process.ID]func(process.ID)
	path               Path
	state              *execstate.State
	returns            map[process.ID]any

	onStep         func()
	onTerminateAll func()
	terminatedAll  bool

	emitter emit.Emitter
	metrics *metrics.Collector

	// instantiationID tags every emitted event; set by the Visitor that
	// owns this Execution instance, zero otherwise.
	instantiationID int
}

// New returns an empty Execution with no live processes. Callers normally
// use this inside a Factory, immediately followed by one or more
// AddProcess calls.
func New(opts ...Option) *Execution {
	ex := &Execution{
		procs:              map[process.ID]process.Process{},
		onTerminateProcess: map[process.ID]func(process.ID){},
		state:              execstate.Zero(),
		returns:            map[process.ID]any{},
		emitter:            emit.Null{},
	}
	for _, opt := range opts {
		opt(ex)
	}
	return ex
}

// SetInstantiationID tags subsequent emitted events with id. Used by the
// Visitor to correlate events with the instantiation that produced them.
func (e *Execution) SetInstantiationID(id int) { e.instantiationID = id }

// AddProcess installs p under pid with label Entry. onTerminate, if
// non-nil, is invoked with pid when the process later terminates (normally
// or by exception) — after its final label and return value are recorded
// and after it has been removed from both the live process map and the
// callback registry.
//
// Returns ErrAlreadyLive if pid is already live.
func (e *Execution) AddProcess(pid process.ID, p process.Process, onTerminate func(process.ID)) error {
	if _, live := e.procs[pid]; live {
		return &ContractError{PID: pid, Op: "AddProcess", Err: ErrAlreadyLive}
	}
	e.procs[pid] = p
	if onTerminate != nil {
		e.onTerminateProcess[pid] = onTerminate
	}
	e.state.Set(pid, process.Entry{})
	e.emitter.Emit(emit.Event{
		InstantiationID: e.instantiationID,
		ProcessID:       int(pid),
		Kind:            emit.KindProcessAdded,
		Msg:             "process added",
	})
	return nil
}

// RenameProcess moves old's live process, its termination hook, and its
// current label onto new. Used by clients to collapse infinite tail-
// recursive state spaces (spec.md §4.3) by renaming a freshly spawned
// replacement back onto a canonical id.
//
// Returns ErrAlreadyLive if new is already live.
func (e *Execution) RenameProcess(old, new process.ID) error {
	if _, live := e.procs[new]; live {
		return &ContractError{PID: new, Op: "RenameProcess", Err: ErrAlreadyLive}
	}
	p, ok := e.procs[old]
	if !ok {
		return &ContractError{PID: old, Op: "RenameProcess", Err: ErrUnknownProcess}
	}
	delete(e.procs, old)
	e.procs[new] = p

	if hook, ok := e.onTerminateProcess[old]; ok {
		delete(e.onTerminateProcess, old)
		e.onTerminateProcess[new] = hook
	}

	if label, ok := e.state.Get(old); ok {
		e.state.Delete(old)
		e.state.Set(new, label)
	}

	e.emitter.Emit(emit.Event{
		InstantiationID: e.instantiationID,
		ProcessID:       int(new),
		Kind:            emit.KindProcessRenamed,
		Msg:             "process renamed",
		Meta:            map[string]any{"from": int(old)},
	})
	return nil
}

// Available returns the currently live process ids, in unspecified order.
func (e *Execution) Available() []process.ID {
	out := make([]process.ID, 0, len(e.procs))
	for pid := range e.procs {
		out = append(out, pid)
	}
	return out
}

// State returns an independent copy of the current ExecutionState.
func (e *Execution) State() *execstate.State { return e.state.Copy() }

// Path returns a copy of the path walked so far.
func (e *Execution) Path() Path {
	out := make(Path, len(e.path))
	copy(out, e.path)
	return out
}

// Return returns the recorded return/exception value for pid and whether
// one has been recorded.
func (e *Execution) Return(pid process.ID) (any, bool) {
	v, ok := e.returns[pid]
	return v, ok
}

// Next advances exactly one process. Preconditions: pid is live; returns
// ErrUnknownProcess (wrapped in ContractError) otherwise. Effects, per
// spec.md §4.3:
//
//  1. Call Step on the process.
//  2. Returned(v): label becomes Terminated, v recorded as the return
//     value, process removed from the live set, its termination hook (if
//     any) invoked with pid.
//  3. Raised(err): label becomes the Failed value, err recorded as the
//     return value, process removed, termination hook invoked.
//  4. Yielded(label): label is set to the yielded value.
//  5. pid is appended to the path.
//  6. OnStep fires.
//  7. If the live set is now empty, OnTerminateAll fires.
func (e *Execution) Next(ctx context.Context, pid process.ID) (process.Label, error) {
	p, ok := e.procs[pid]
	if !ok {
		return nil, &ContractError{PID: pid, Op: "Next", Err: ErrUnknownProcess}
	}

	start := time.Now()
	result, err := p.Step(ctx)
	if err != nil {
		return nil, &ContractError{PID: pid, Op: "Next", Err: err}
	}

	var label process.Label
	status := "success"

	switch result.Kind {
	case process.Returned:
		label = process.Terminated{}
		e.state.Set(pid, label)
		e.returns[pid] = result.Value
		e.terminate(pid)
		status = "terminated"
	case process.Raised:
		kind := failureKind(result.Value)
		failErr, _ := result.Value.(error)
		label = process.Failed{Kind_: kind, Err: failErr}
		e.state.Set(pid, label)
		e.returns[pid] = result.Value
		e.terminate(pid)
		status = "error"
	case process.Yielded:
		l, ok := result.Value.(process.Label)
		if !ok {
			l = process.Value{V: result.Value}
		}
		label = l
		e.state.Set(pid, label)
	case process.Cancelled:
		return nil, &ContractError{PID: pid, Op: "Next", Err: ErrContractViolation}
	default:
		return nil, &ContractError{PID: pid, Op: "Next", Err: ErrContractViolation}
	}

	e.path = append(e.path, pid)

	if e.metrics != nil {
		e.metrics.ObserveStepLatency(int(pid), status, time.Since(start))
	}
	e.emitter.Emit(emit.Event{
		InstantiationID: e.instantiationID,
		Step:            len(e.path),
		ProcessID:       int(pid),
		Kind:            emit.KindStep,
		Msg:             "step resolved",
		Meta:            map[string]any{"label": label.String()},
	})

	if e.onStep != nil {
		e.onStep()
	}

	if len(e.procs) == 0 {
		e.fireTerminateAll()
	}

	return label, nil
}

// terminate removes pid from the live set and invokes its termination hook,
// if any, per the order specified in spec.md §4.3: "A terminated process is
// removed before hooks fire."
func (e *Execution) terminate(pid process.ID) {
	delete(e.procs, pid)
	hook := e.onTerminateProcess[pid]
	delete(e.onTerminateProcess, pid)

	e.emitter.Emit(emit.Event{
		InstantiationID: e.instantiationID,
		ProcessID:       int(pid),
		Kind:            emit.KindProcessTerminated,
		Msg:             "process terminated",
	})

	if hook != nil {
		hook(pid)
	}
}

// fireTerminateAll is idempotent: the hook and event fire at most once per
// Execution, however many of Next's drain check, Stop, and Run's own
// unconditional guarantee race to call it.
func (e *Execution) fireTerminateAll() {
	if e.terminatedAll {
		return
	}
	e.terminatedAll = true

	e.emitter.Emit(emit.Event{
		InstantiationID: e.instantiationID,
		Kind:            emit.KindAllTerminated,
		Msg:             "all processes terminated",
	})
	if e.onTerminateAll != nil {
		e.onTerminateAll()
	}
}

// Stop issues Cancel to every live process in turn, asserting each resolves
// to Cancelled or Raised (never Yielded — a Yielded after Cancel is a
// ContractViolation), empties the live set, and fires OnTerminateAll.
func (e *Execution) Stop(ctx context.Context) error {
	for pid, p := range e.procs {
		p.Cancel()
		result, err := p.Step(ctx)
		if err != nil {
			return &ContractError{PID: pid, Op: "Stop", Err: err}
		}
		switch result.Kind {
		case process.Cancelled:
			// expected
		case process.Raised:
			kind := failureKind(result.Value)
			failErr, _ := result.Value.(error)
			e.state.Set(pid, process.Failed{Kind_: kind, Err: failErr})
			e.returns[pid] = result.Value
		default:
			return &ContractError{PID: pid, Op: "Stop", Err: ErrContractViolation}
		}
	}
	e.procs = map[process.ID]process.Process{}
	e.fireTerminateAll()
	return nil
}

// Run steps through every pid in path in order and returns the resulting
// labels. Mirrors the original run()'s unconditional self.handle_terminate()
// at the end: OnTerminateAll is guaranteed to fire exactly once before Run
// returns, on any exit path (success or error), even if path leaves
// processes live — not only when Next's own drain check already fired it.
func (e *Execution) Run(ctx context.Context, path Path) ([]process.Label, error) {
	defer e.fireTerminateAll()

	labels := make([]process.Label, 0, len(path))
	for _, pid := range path {
		label, err := e.Next(ctx, pid)
		if err != nil {
			return labels, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// FromPath replays path against this Execution, discarding the resulting
// labels — used to reconstruct an Execution's state from its recorded path.
func (e *Execution) FromPath(ctx context.Context, path Path) error {
	_, err := e.Run(ctx, path)
	return err
}

// failureKind derives a stable exception-kind tag from an arbitrary raised
// value: a caller-declared Kind() string wins, then the dynamic type name
// for plain errors, "Unknown" otherwise. Equality on Failed labels compares
// only this tag, never the message (spec.md §4.2).
func failureKind(v any) string {
	switch t := v.(type) {
	case interface{ Kind() string }:
		return t.Kind()
	case error:
		return fmt.Sprintf("%T", t)
	default:
		return "Unknown"
	}
}
