package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/race-explorer/racegraph/digraph"
	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/process"
	"github.com/race-explorer/racegraph/visitor"
)

func TestDOTRendersVerticesAndEdges(t *testing.T) {
	g := digraph.New[*execstate.State, visitor.EdgeLabel]()
	root := execstate.Zero()
	root.Set(1, process.Entry{})
	next := execstate.Zero()
	next.Set(1, process.Value{V: "a"})

	g.V = []int{0, 1}
	g.VLabels[0] = root
	g.VLabels[1] = next
	g.E = []digraph.Edge{{ID: 0, From: 0, To: 1}}
	g.ELabels[0] = visitor.EdgeLabel{PID: 1, Count: 1, Total: 1}

	out := DOT(Labels(g, StateVertexLabel, EdgeCountLabel(nil)))
	if !strings.Contains(out, "digraph G {") {
		t.Fatalf("missing digraph header:\n%s", out)
	}
	if !strings.Contains(out, `0 -> 1`) {
		t.Fatalf("missing edge 0 -> 1:\n%s", out)
	}
	if !strings.Contains(out, `label="1 [1]"`) {
		t.Fatalf("missing default-labeled deterministic edge:\n%s", out)
	}
	if !strings.Contains(out, `label="(1:E)"`) {
		t.Fatalf("root vertex should render Entry as the glyph E:\n%s", out)
	}
}

func TestDOTUsesCustomProcessLabeler(t *testing.T) {
	g := digraph.New[*execstate.State, visitor.EdgeLabel]()
	g.V = []int{0, 1}
	g.E = []digraph.Edge{{ID: 0, From: 0, To: 1}}
	g.ELabels[0] = visitor.EdgeLabel{PID: 7, Count: 1, Total: 1}

	labeler := func(pid process.ID) string { return fmt.Sprintf("worker-%d", pid) }
	out := DOT(Labels(g, StateVertexLabel, EdgeCountLabel(labeler)))
	if !strings.Contains(out, "worker-7") {
		t.Fatalf("custom labeler not applied:\n%s", out)
	}
}

func TestEdgeCountLabelAnnotatesNonDeterminism(t *testing.T) {
	labeler := EdgeCountLabel(nil)
	deterministic := labeler(visitor.EdgeLabel{PID: 3, Count: 5, Total: 5})
	if deterministic != "3 [5]" {
		t.Fatalf("deterministic edge label = %q, want %q", deterministic, "3 [5]")
	}
	nondeterministic := labeler(visitor.EdgeLabel{PID: 3, Count: 2, Total: 5})
	if nondeterministic != "3 [2/5]" {
		t.Fatalf("non-deterministic edge label = %q, want %q", nondeterministic, "3 [2/5]")
	}
}

func TestStateVertexLabelRendersGlyphsAndValues(t *testing.T) {
	s := execstate.Zero()
	s.Set(1, process.Entry{})
	s.Set(2, process.Terminated{})
	s.Set(3, process.Value{V: "spin"})
	s.Set(4, process.Failed{Kind_: "Panic"})

	got := StateVertexLabel(s)
	want := "(1:E 2:T 3:spin 4:$Panic)"
	if got != want {
		t.Fatalf("StateVertexLabel = %q, want %q", got, want)
	}
}

func TestStateVertexLabelRendersCollapsedCycle(t *testing.T) {
	sub := digraph.New[any, visitor.EdgeLabel]()
	sub.V = []int{0, 1, 2}
	cycle := &digraph.Cycle[visitor.EdgeLabel]{SubGraph: sub, Members: []int{0, 1}}

	got := StateVertexLabel(cycle)
	want := "Cycle(3,2)"
	if got != want {
		t.Fatalf("StateVertexLabel(cycle) = %q, want %q", got, want)
	}
}
