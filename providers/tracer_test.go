package providers

import (
	"context"
	"testing"

	"github.com/race-explorer/racegraph/process"
)

func TestTracerCheckpointsBecomeYields(t *testing.T) {
	tracer := NewTracer(func(ctx context.Context, cp Checkpointer) (any, error) {
		if err := cp.Checkpoint(ctx, "line-1"); err != nil {
			return nil, err
		}
		if err := cp.Checkpoint(ctx, "line-2"); err != nil {
			return nil, err
		}
		return "done", nil
	})

	ctx := context.Background()
	r1, err := tracer.Step(ctx)
	if err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if r1.Kind != process.Yielded || r1.Value != "line-1" {
		t.Fatalf("Step 1 = %+v, want Yielded(line-1)", r1)
	}

	r2, err := tracer.Step(ctx)
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if r2.Kind != process.Yielded || r2.Value != "line-2" {
		t.Fatalf("Step 2 = %+v, want Yielded(line-2)", r2)
	}

	r3, err := tracer.Step(ctx)
	if err != nil {
		t.Fatalf("Step 3: %v", err)
	}
	if r3.Kind != process.Returned || r3.Value != "done" {
		t.Fatalf("Step 3 = %+v, want Returned(done)", r3)
	}
}
