// Package emit provides event emission and observability for Execution and
// Visitor lifecycle, adapted from the langgraph-go graph/emit package to
// this domain's units of work (an instantiation of an Execution, a process
// step, an edge recorded in the state graph).
package emit

// Kind tags the sort of lifecycle event being emitted.
type Kind string

const (
	// KindProcessAdded fires on Execution.AddProcess.
	KindProcessAdded Kind = "process_added"
	// KindProcessRenamed fires on Execution.RenameProcess.
	KindProcessRenamed Kind = "process_renamed"
	// KindStep fires after every Execution.Next call.
	KindStep Kind = "step"
	// KindProcessTerminated fires when a single process terminates (normally or by exception).
	KindProcessTerminated Kind = "process_terminated"
	// KindAllTerminated fires when the live set becomes empty.
	KindAllTerminated Kind = "all_terminated"
	// The four kinds below name Visitor-level occasions; nothing in this
	// module emits them, since the Visitor emits no events.

	// KindInstantiationStart names the Visitor allocating a fresh Execution.
	KindInstantiationStart Kind = "instantiation_start"
	// KindInstantiationEnd names an instantiation's interleaving being exhausted.
	KindInstantiationEnd Kind = "instantiation_end"
	// KindEdgeRecorded names the Visitor recording a new (pre, pid) -> post edge.
	KindEdgeRecorded Kind = "edge_recorded"
	// KindSearchExhausted names Visitor.Next's queue draining.
	KindSearchExhausted Kind = "search_exhausted"
)

// Event is a single observability event emitted during execution/search.
type Event struct {
	// InstantiationID identifies which Execution instantiation produced this
	// event; zero for events that predate any instantiation.
	InstantiationID int

	// Step is the sequential step number within the instantiation (1-indexed).
	// Zero for instantiation- or search-level events.
	Step int

	// ProcessID identifies which process produced this event, if any.
	ProcessID int

	// Kind is the event's tag; see the Kind* constants above.
	Kind Kind

	// Msg is a short human-readable description.
	Msg string

	// Meta carries event-kind-specific structured data, e.g. "label" for
	// KindStep, "from" for KindProcessRenamed.
	Meta map[string]any
}
