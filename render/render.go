// Package render turns a recorded state graph into Graphviz DOT text and,
// optionally, shells out to `dot` to rasterize it.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/race-explorer/racegraph/digraph"
	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/process"
	"github.com/race-explorer/racegraph/visitor"
)

// ProcessLabeler renames a process.ID for display — e.g. "philosopher-3"
// instead of the bare integer — mirroring race2/util/graphviz.py's
// process_id_map parameter.
type ProcessLabeler func(process.ID) string

// DefaultProcessLabeler renders a process id as its decimal value.
func DefaultProcessLabeler(pid process.ID) string {
	return fmt.Sprintf("%d", pid)
}

// cycleLike is satisfied by *digraph.Cycle[E] for any E: it lets
// StateVertexLabel recognize a collapsed-cycle supernode without knowing
// the graph's edge-label type.
type cycleLike interface {
	VertexCount() int
	MemberCount() int
}

// stateGlyph renders label per graph_render_labels' ExecutionState policy:
// Entry/Terminated collapse to a single-letter glyph ("E"/"T"), a Failed
// label keeps its "$Kind" form, and anything else (a Value) renders as
// itself.
func stateGlyph(label process.Label) string {
	switch label.Kind() {
	case process.KindEntry, process.KindTerminated:
		return label.String()[:1]
	default:
		return label.String()
	}
}

// StateVertexLabel stringifies a vertex label per graph_render_labels'
// policy: an *execstate.State renders as "(pid:glyph pid:glyph …)" sorted
// by pid, a collapsed-cycle supernode (anything satisfying cycleLike, i.e.
// any *digraph.Cycle[E]) renders as "Cycle(|sub_graph.V|,|members|)", and
// anything else falls back to fmt's default verb.
func StateVertexLabel(v any) string {
	switch t := v.(type) {
	case *execstate.State:
		pids := t.PIDs()
		sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
		var b strings.Builder
		b.WriteByte('(')
		for i, pid := range pids {
			if i > 0 {
				b.WriteByte(' ')
			}
			label, _ := t.Get(pid)
			fmt.Fprintf(&b, "%d:%s", pid, stateGlyph(label))
		}
		b.WriteByte(')')
		return b.String()
	case cycleLike:
		return fmt.Sprintf("Cycle(%d,%d)", t.VertexCount(), t.MemberCount())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EdgeCountLabel renders a visitor.EdgeLabel per graph_render_labels' edge
// policy: "pid [cnt]" when its edge key only ever produced one post-state,
// "pid [cnt/total]" once non-determinism was observed (more than one
// distinct post-state recorded for the same (pre_state, pid)).
func EdgeCountLabel(labeler ProcessLabeler) func(visitor.EdgeLabel) string {
	if labeler == nil {
		labeler = DefaultProcessLabeler
	}
	return func(el visitor.EdgeLabel) string {
		if el.Count == el.Total {
			return fmt.Sprintf("%s [%d]", labeler(el.PID), el.Count)
		}
		return fmt.Sprintf("%s [%d/%d]", labeler(el.PID), el.Count, el.Total)
	}
}

// Labels stringifies g's vertex and edge labels per the graph_render_labels
// policy, producing a Graph[string,string] that DOT can render — the
// renderer itself must not own graph semantics (it only lays out
// pre-stringified vertices and edges), so this pass is where
// ExecutionState/Cycle/edge-count knowledge lives. Rendering a plain
// Visitor.Graph() passes StateVertexLabel and EdgeCountLabel(labeler);
// rendering a CollapseCycles result passes the same StateVertexLabel (it
// already switches on cycleLike for the `any`-typed collapsed vertices).
func Labels[V any, E any](g *digraph.Graph[V, E], vertexLabel func(any) string, edgeLabel func(E) string) *digraph.Graph[string, string] {
	out := digraph.New[string, string]()
	out.V = append([]int(nil), g.V...)
	out.E = append([]digraph.Edge(nil), g.E...)
	for id, label := range g.VLabels {
		out.VLabels[id] = vertexLabel(label)
	}
	for id, label := range g.ELabels {
		out.ELabels[id] = edgeLabel(label)
	}
	return out
}

// DOT renders g — a graph whose labels have already been stringified by
// Labels — as a Graphviz "digraph G { ... }" document: one node per vertex,
// one edge per recorded transition, following race2/util/graphviz.py's
// output shape.
func DOT(g *digraph.Graph[string, string]) string {
	vertices := append([]int(nil), g.V...)
	sort.Ints(vertices)

	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("edge [dir=forward]\n")
	b.WriteString("node [shape=plaintext]\n\n")

	for _, v := range vertices {
		label := fmt.Sprintf("%d", v)
		if l, ok := g.VLabels[v]; ok {
			label = l
		}
		fmt.Fprintf(&b, "%d [label=%q]\n", v, label)
	}

	edges := append([]digraph.Edge(nil), g.E...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		fmt.Fprintf(&b, "%d -> %d [label=%q]\n", e.From, e.To, g.ELabels[e.ID])
	}

	b.WriteString("}\n")
	return b.String()
}
