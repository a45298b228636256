package emit

import "context"

// Emitter receives observability events from Execution.
//
// Implementations should be non-blocking and resilient: a slow or failing
// Emitter must never stall or crash the search. Emit must not panic.
type Emitter interface {
	// Emit sends a single event to the configured backend.
	Emit(event Event)

	// EmitBatch sends multiple events in one operation. Implementations
	// should preserve order and treat individual failures as best-effort
	// (log, don't return an error for a single bad event).
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until all buffered events have been delivered or the
	// context is done. Safe to call more than once.
	Flush(ctx context.Context) error
}
