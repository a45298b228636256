package providers

import (
	"context"

	"github.com/race-explorer/racegraph/process"
)

// StepFunc computes the i'th step's outcome (i starts at zero). It is
// called at most once per index: once it returns Returned or Raised, InProc
// never calls it again.
type StepFunc func(i int) (process.StepResult, error)

// InProc is the plain in-process Process: a stateless, synchronous
// StepFunc driven directly on the caller's goroutine, with no worker
// indirection. This is the default shape a ProcessGenerator took in the
// original (a bare Python generator, no multiprocessing involved) — most
// scenario processes should be InProc rather than Worker, which exists for
// the minority of cases that need a genuinely separate goroutine (e.g. to
// survive Cancel while blocked on external I/O).
type InProc struct {
	fn   StepFunc
	i    int
	done bool
}

// NewInProc wraps fn as a Process.
func NewInProc(fn StepFunc) *InProc {
	return &InProc{fn: fn}
}

func (p *InProc) Step(ctx context.Context) (process.StepResult, error) {
	if p.done {
		return process.StepResult{Kind: process.Cancelled}, nil
	}
	result, err := p.fn(p.i)
	p.i++
	if err != nil {
		p.done = true
		return process.StepResult{}, err
	}
	if result.Kind == process.Returned || result.Kind == process.Raised {
		p.done = true
	}
	return result, nil
}

// Cancel marks the process done; the next Step resolves to Cancelled.
func (p *InProc) Cancel() { p.done = true }
