package emit

import (
	"context"
	"sync"
)

// Buffered is an Emitter that records every event in memory, for test
// assertions on lifecycle event sequences — grounded on the teacher's
// buffered emitter used in emit/buffered_test.go to introspect what an
// engine run emitted.
type Buffered struct {
	mu     sync.Mutex
	events []Event
}

// NewBuffered returns an empty Buffered emitter.
func NewBuffered() *Buffered {
	return &Buffered{}
}

func (b *Buffered) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *Buffered) EmitBatch(_ context.Context, events []Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *Buffered) Flush(context.Context) error { return nil }

// Events returns a copy of every event recorded so far, in emission order.
func (b *Buffered) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Reset clears all recorded events.
func (b *Buffered) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}
