package emit

import "context"

// Null is an Emitter that discards every event. It is the zero-cost default
// used when no observability backend is configured.
type Null struct{}

func (Null) Emit(Event) {}

func (Null) EmitBatch(context.Context, []Event) error { return nil }

func (Null) Flush(context.Context) error { return nil }
