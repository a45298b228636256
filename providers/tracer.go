package providers

import "context"

// Checkpointer is handed to traced work so it can mark a point that should
// surface as a Yielded step. Go has no per-source-line trace hook the way
// CPython's sys.settrace does (race2/multiprocessing/trace.py), so Tracer
// requires the wrapped function to call Checkpoint explicitly at each point
// it wants recorded — a deliberate adaptation, not a literal port.
type Checkpointer interface {
	Checkpoint(ctx context.Context, label any) error
}

// Tracer wraps a TracedFunc as a Worker: each Checkpoint call becomes one
// Yielded step carrying that label.
type Tracer struct {
	*Worker
}

// TracedFunc is work that reports its own checkpoints via the Checkpointer
// it is handed, instead of the plain yield closure WorkerFunc uses
// directly — useful when the instrumented code already threads a context
// through several call frames and checkpointing happens deep inside one of
// them.
type TracedFunc func(ctx context.Context, cp Checkpointer) (any, error)

type checkpointAdapter struct {
	yield Yielder
}

func (c checkpointAdapter) Checkpoint(ctx context.Context, label any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.yield(label)
	return nil
}

// NewTracer builds a Tracer that drives fn on its own goroutine, turning
// every Checkpoint call into one Yielded step.
func NewTracer(fn TracedFunc) *Tracer {
	worker := NewWorker(func(ctx context.Context, yield Yielder) (any, error) {
		return fn(ctx, checkpointAdapter{yield: yield})
	})
	return &Tracer{Worker: worker}
}
