package visitor

import (
	"github.com/race-explorer/racegraph/emit"
	"github.com/race-explorer/racegraph/execution"
	"github.com/race-explorer/racegraph/metrics"
)

// Option configures a Visitor at construction time.
type Option func(*Visitor)

// WithDepthFirst makes the unvisited-path queue a stack (push-front),
// favouring depth-first exploration over the default breadth-first order.
func WithDepthFirst() Option {
	return func(v *Visitor) { v.depthFirst = true }
}

// WithMaxIter bounds the number of NextSub instantiations the Visitor will
// run before Next returns ErrMaxIterExceeded, guarding against state spaces
// that are unexpectedly (or genuinely) infinite. Zero, the default, means
// unbounded.
func WithMaxIter(n int) Option {
	return func(v *Visitor) { v.maxIter = n }
}

// WithEmitter stores an observability Emitter on the Visitor. The Visitor
// emits no events through it and does not pass it to the Executions its
// factory builds.
func WithEmitter(e emit.Emitter) Option {
	return func(v *Visitor) { v.emitter = e }
}

// WithMetrics attaches a Prometheus Collector on which the Visitor counts
// instantiations and edge visits. It does not report queue depth, and the
// Collector is not passed to the Executions the factory builds.
func WithMetrics(m *metrics.Collector) Option {
	return func(v *Visitor) { v.metrics = m }
}

// WithSeedQueue pre-populates the path queue with additional seed paths
// once the zero-path instantiation completes, letting a caller bias
// exploration toward specific interleavings up front.
func WithSeedQueue(paths []execution.Path) Option {
	return func(v *Visitor) { v.pendingSeeds = paths }
}
