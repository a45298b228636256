package providers

import (
	"context"
	"time"

	"github.com/race-explorer/racegraph/process"
)

// Packet is one message exchanged between a Worker and its backing
// goroutine. Names and roles are ported from
// race2/multiprocessing/thread.py's ThreadGenerator protocol.
type Packet interface{ isPacket() }

// Call resumes a parked worker goroutine, asking it to continue past its
// last Yield.
type Call struct{}

// Yield is sent by the worker each time its function pauses with a value.
type Yield struct{ Payload any }

// Return is sent by the worker when its function finishes normally.
type Return struct{ Payload any }

// Raise is sent by the worker when its function panics or returns an
// error.
type Raise struct{ Err error }

// Terminate is sent to the worker to request it abandon its function
// immediately; sent by the worker back to confirm.
type Terminate struct{}

func (Call) isPacket()      {}
func (Yield) isPacket()     {}
func (Return) isPacket()    {}
func (Raise) isPacket()     {}
func (Terminate) isPacket() {}

// Yielder is handed to a WorkerFunc so it can pause and report a value,
// mirroring ThreadGenerator.thread_yield. It blocks until the Worker's
// next Step resumes it, or the Worker is cancelled, in which case it
// panics with workerCancelled to unwind the goroutine (recovered by the
// Worker's run loop, never escaping to the caller).
type Yielder func(value any)

// WorkerFunc is long-running work driven one pause-point at a time. It
// must call yield at every point it wants to surface as a Yielded step,
// and must return promptly once ctx is done.
type WorkerFunc func(ctx context.Context, yield Yielder) (any, error)

type workerCancelled struct{}

// Worker adapts a WorkerFunc into a process.Process by running it on a
// dedicated goroutine and exchanging Packets over two channels, following
// ThreadGenerator's queue_in/queue_out split. A Step that does not receive
// a Packet within Timeout resolves to Raised with ErrTimeout as its value
// and tears the goroutine down; the next Step starts a fresh one, mirroring
// thread_restart.
type Worker struct {
	fn      WorkerFunc
	Timeout time.Duration

	toWorker   chan Packet
	fromWorker chan Packet
	cancelFn   context.CancelFunc

	started   bool
	finished  bool
	cancelled bool
}

// NewWorker returns a Worker wrapping fn, with Timeout defaulting to 10
// seconds (ThreadGenerator.read_timeout's default).
func NewWorker(fn WorkerFunc) *Worker {
	return &Worker{fn: fn, Timeout: 10 * time.Second}
}

func (w *Worker) spawn(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFn = cancel
	w.toWorker = make(chan Packet)
	w.fromWorker = make(chan Packet, 1)

	yield := func(value any) {
		w.fromWorker <- Yield{Payload: value}
		switch (<-w.toWorker).(type) {
		case Terminate:
			panic(workerCancelled{})
		}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(workerCancelled); ok {
					w.fromWorker <- Terminate{}
					return
				}
				panic(r)
			}
		}()
		value, err := w.fn(ctx, yield)
		if err != nil {
			w.fromWorker <- Raise{Err: err}
			return
		}
		w.fromWorker <- Return{Payload: value}
	}()
}

// Step advances the worker by one pause point. The first call spawns the
// goroutine; subsequent calls send Call to resume it past its last Yield.
func (w *Worker) Step(ctx context.Context) (process.StepResult, error) {
	if w.cancelled || w.finished {
		return process.StepResult{Kind: process.Cancelled}, nil
	}

	if !w.started {
		w.started = true
		w.spawn(ctx)
	} else {
		w.toWorker <- Call{}
	}

	select {
	case packet := <-w.fromWorker:
		switch p := packet.(type) {
		case Yield:
			return process.StepResult{Kind: process.Yielded, Value: p.Payload}, nil
		case Return:
			w.finished = true
			return process.StepResult{Kind: process.Returned, Value: p.Payload}, nil
		case Raise:
			w.finished = true
			return process.StepResult{Kind: process.Raised, Value: p.Err}, nil
		case Terminate:
			w.finished = true
			return process.StepResult{Kind: process.Cancelled}, nil
		default:
			w.finished = true
			return process.StepResult{}, ErrTimeout
		}
	case <-time.After(w.Timeout):
		w.started = false
		w.cancelFn()
		return process.StepResult{Kind: process.Raised, Value: ErrTimeout}, nil
	case <-ctx.Done():
		w.cancelled = true
		w.cancelFn()
		return process.StepResult{Kind: process.Cancelled}, nil
	}
}

// Cancel requests the worker goroutine unwind at its next yield point. Safe
// to call more than once; a no-op if the worker never started or already
// finished.
func (w *Worker) Cancel() {
	if w.cancelled || w.finished || !w.started {
		w.cancelled = true
		return
	}
	w.cancelled = true
	select {
	case w.toWorker <- Terminate{}:
	default:
		w.cancelFn()
	}
}
