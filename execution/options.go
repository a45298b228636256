package execution

import (
	"github.com/race-explorer/racegraph/emit"
	"github.com/race-explorer/racegraph/metrics"
)

// Option configures an Execution at construction time, following the
// teacher's functional-options pattern (graph/options.go).
type Option func(*Execution)

// WithEmitter attaches an observability Emitter. Defaults to emit.Null{}.
func WithEmitter(e emit.Emitter) Option {
	return func(ex *Execution) { ex.emitter = e }
}

// WithMetrics attaches a Prometheus Collector. Defaults to nil (no metrics).
func WithMetrics(m *metrics.Collector) Option {
	return func(ex *Execution) { ex.metrics = m }
}

// WithOnStep installs a hook invoked after every successful Next call.
func WithOnStep(fn func()) Option {
	return func(ex *Execution) { ex.onStep = fn }
}

// WithOnTerminateAll installs a hook invoked at most once per Execution:
// when the live set becomes empty, when Stop completes, or when Run returns,
// whichever comes first.
func WithOnTerminateAll(fn func()) Option {
	return func(ex *Execution) { ex.onTerminateAll = fn }
}
