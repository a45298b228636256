package emit

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Log is an Emitter that writes one line per event to an io.Writer. It is
// the default backend for interactive use and debugging, grounded on the
// teacher's log emitter convention of formatting an Event into a single
// human-readable line.
type Log struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLog returns a Log emitter writing to w.
func NewLog(w io.Writer) *Log {
	return &Log{out: w}
}

func (l *Log) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[inst=%d step=%d pid=%d] %s: %s\n",
		event.InstantiationID, event.Step, event.ProcessID, event.Kind, event.Msg)
}

func (l *Log) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

func (l *Log) Flush(context.Context) error { return nil }
