package visitor

import (
	"context"
	"testing"

	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/execution"
	"github.com/race-explorer/racegraph/process"
)

// countingProcess yields the values 1..steps, one per Step, then returns. It is
// stateless across factory calls as long as the factory builds a fresh
// instance per call, which is the ExecutionFactory contract.
type countingProcess struct {
	id    int
	steps int
	i     int
}

func (p *countingProcess) Step(ctx context.Context) (process.StepResult, error) {
	if p.i >= p.steps {
		return process.StepResult{Kind: process.Returned, Value: nil}, nil
	}
	p.i++
	return process.StepResult{Kind: process.Yielded, Value: process.Value{V: p.i}}, nil
}

func (p *countingProcess) Cancel() {}

// twoOneStepProcesses returns an ExecutionFactory with two processes that
// each yield once then return — two steps per process, so the four steps
// interleave into six distinct schedules.
func twoOneStepProcesses() execution.Factory {
	return func() (*execution.Execution, error) {
		ex := execution.New()
		if err := ex.AddProcess(1, &countingProcess{id: 1, steps: 1}, nil); err != nil {
			return nil, err
		}
		if err := ex.AddProcess(2, &countingProcess{id: 2, steps: 1}, nil); err != nil {
			return nil, err
		}
		return ex, nil
	}
}

func TestVisitorExploresAllInterleavings(t *testing.T) {
	ctx := context.Background()
	v, err := New(ctx, twoOneStepProcesses())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// Two processes that each yield once and then return: the reachable
	// schedules are the six interleavings of 1,1 with 2,2 — what matters
	// here is that more than one instantiation ran and that edges were
	// recorded.
	if v.InstantiationCount() < 2 {
		t.Fatalf("InstantiationCount = %d, want at least 2 (both orderings explored)", v.InstantiationCount())
	}
	if v.VisitedEdgeCount() == 0 {
		t.Fatalf("no edges recorded")
	}
}

func TestCanPushPathRejectsFullyVisitedPath(t *testing.T) {
	ctx := context.Background()
	v, err := New(ctx, twoOneStepProcesses())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// The empty path walks no edges, so it is trivially fully visited from
	// the root and leaves nothing unvisited to push.
	if v.CanPushPath(execution.Path{}) {
		t.Fatalf("CanPushPath(empty) = true, want false (nothing to append)")
	}
}

func TestDecideNextPathMergesAgreeingPrefix(t *testing.T) {
	v := &Visitor{}
	seed := execution.Path{1, 2}
	candidate := execution.Path{1, 2, 3, 4}
	merged, ok := v.DecideNextPath(seed, candidate)
	if !ok {
		t.Fatalf("DecideNextPath should agree on shared prefix")
	}
	want := execution.Path{1, 2, 3, 4}
	if len(merged) != len(want) {
		t.Fatalf("merged = %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("merged = %v, want %v", merged, want)
		}
	}
}

func TestDecideNextPathRejectsDivergentPrefix(t *testing.T) {
	v := &Visitor{}
	seed := execution.Path{1, 2}
	candidate := execution.Path{1, 9}
	_, ok := v.DecideNextPath(seed, candidate)
	if ok {
		t.Fatalf("DecideNextPath should reject a divergent prefix")
	}
}

func TestSpanningTreeStartsFromSingleRootFrame(t *testing.T) {
	ctx := context.Background()
	v, err := New(ctx, twoOneStepProcesses())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	nodes := v.SpanningTree(true)
	if len(nodes) == 0 {
		t.Fatalf("SpanningTree produced no nodes")
	}
	if len(nodes[0].States) != 1 {
		t.Fatalf("root frame should carry exactly one state, got %d", len(nodes[0].States))
	}
}

func TestGraphExportsRecordedStatesAndEdges(t *testing.T) {
	ctx := context.Background()
	v, err := New(ctx, twoOneStepProcesses())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	g := v.Graph()
	if len(g.V) != len(v.VisitedVertices()) {
		t.Fatalf("exported vertex count = %d, want %d", len(g.V), len(v.VisitedVertices()))
	}
	if len(g.E) != v.VisitedEdgeCount() {
		t.Fatalf("exported edge count = %d, want %d", len(g.E), v.VisitedEdgeCount())
	}
}

func TestDepthFirstOptionUsesStack(t *testing.T) {
	ctx := context.Background()
	v, err := New(ctx, twoOneStepProcesses(), WithDepthFirst())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !v.depthFirst {
		t.Fatalf("WithDepthFirst did not set depthFirst")
	}
	if err := v.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}
}

// TestEdgeStatesRecordsMultisetWithCounts checks the edge table's per-key
// entry keeps every distinct post-state it is given (with a visit count),
// instead of the last call silently overwriting whatever came before — the
// multiset spec.md §3/§9 require so a non-deterministic provider (e.g.
// llmprocess) advancing the same (pre_state, pid) to different post-states
// across instantiations isn't lost.
func TestEdgeStatesRecordsMultisetWithCounts(t *testing.T) {
	s1 := execstate.Zero()
	s1.Set(1, process.Value{V: "a"})
	s2 := execstate.Zero()
	s2.Set(1, process.Value{V: "b"})

	es := &edgeStates{}
	es.record(s1)
	es.record(s1)
	es.record(s2)

	if len(es.order) != 2 {
		t.Fatalf("distinct post-states = %d, want 2", len(es.order))
	}
	if es.total() != 3 {
		t.Fatalf("total() = %d, want 3", es.total())
	}
	if es.byKey[s1.Key()].count != 2 {
		t.Fatalf("s1 count = %d, want 2", es.byKey[s1.Key()].count)
	}
	if es.byKey[s2.Key()].count != 1 {
		t.Fatalf("s2 count = %d, want 1", es.byKey[s2.Key()].count)
	}
	if es.first() != s1.Key() {
		t.Fatalf("first() = %q, want s1's key (the first one recorded)", es.first())
	}
}

// TestSplitPathVisitedUsesFirstRecordedPostState checks that when an edge
// key's multiset holds more than one post-state, SplitPathVisited's
// traversal follows the first one recorded (insertion order), not some
// other tie-break like lexical or label order.
func TestSplitPathVisitedUsesFirstRecordedPostState(t *testing.T) {
	v := &Visitor{
		visitedEdges: map[edgeKey]*edgeStates{},
		rootStates:   map[string]*execstate.State{},
	}
	root := execstate.Zero()
	root.Set(1, process.Entry{})
	v.rootStates[root.Key()] = root

	// s2 is recorded before s1, even though "a" < "b" — first() must track
	// insertion order, not any ordering over the post-states' content.
	s1 := execstate.Zero()
	s1.Set(1, process.Value{V: "a"})
	s2 := execstate.Zero()
	s2.Set(1, process.Value{V: "b"})

	rootEdge := &edgeStates{}
	rootEdge.record(s2)
	rootEdge.record(s1)
	v.visitedEdges[edgeKey{state: root.Key(), pid: 1}] = rootEdge

	// Only s2 (the first-recorded post-state) has a recorded continuation.
	// If SplitPathVisited followed s1 instead, position 1 of this 2-step
	// path would come back unvisited.
	next := execstate.Zero()
	next.Set(1, process.Terminated{})
	s2Edge := &edgeStates{}
	s2Edge.record(next)
	v.visitedEdges[edgeKey{state: s2.Key(), pid: 1}] = s2Edge

	ok, visited, unvisited := v.SplitPathVisited(execution.Path{1, 1})
	if !ok {
		t.Fatalf("SplitPathVisited ok = false, want true")
	}
	if len(visited) != 2 || len(unvisited) != 0 {
		t.Fatalf("visited=%v unvisited=%v, want the whole path visited via the first-recorded chain", visited, unvisited)
	}
}
