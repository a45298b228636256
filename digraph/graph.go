// Package digraph implements the labelled multidigraph used as the state
// graph's underlying representation: vertices and edges are plain ints,
// with separate label maps so a vertex/edge can exist unlabelled.
package digraph

import "sort"

// Edge is one directed, uniquely-identified edge from From to To.
type Edge struct {
	ID   int
	From int
	To   int
}

// Graph is a directed multigraph: vertices and edges are identified by
// int, labels are attached separately so structure and labelling can vary
// independently, mirroring race2/graph/abstract.py's Graph dataclass.
type Graph[V any, E any] struct {
	V       []int
	E       []Edge
	VLabels map[int]V
	ELabels map[int]E
}

// New returns an empty Graph.
func New[V any, E any]() *Graph[V, E] {
	return &Graph[V, E]{VLabels: map[int]V{}, ELabels: map[int]E{}}
}

// EdgeSpec is one entry passed to FromAdjacencyList: From/To are required,
// ID is optional — pass -1 to have FromAdjacencyList assign it as the
// entry's position in edges.
type EdgeSpec struct {
	ID   int
	From int
	To   int
}

// FromAdjacencyList builds a Graph from an edge list plus any extra
// isolated vertices, mirroring Graph.from_adjacency_list. Vertex ids not
// mentioned by any edge but present in extraVertices are included with no
// incident edges.
func FromAdjacencyList[V any, E any](edges []EdgeSpec, extraVertices []int, vLabels map[int]V, eLabels map[int]E) *Graph[V, E] {
	g := New[V, E]()
	seen := map[int]bool{}

	for i, spec := range edges {
		id := spec.ID
		if id < 0 {
			id = i
		}
		g.E = append(g.E, Edge{ID: id, From: spec.From, To: spec.To})
		if !seen[spec.From] {
			seen[spec.From] = true
			g.V = append(g.V, spec.From)
		}
		if !seen[spec.To] {
			seen[spec.To] = true
			g.V = append(g.V, spec.To)
		}
	}
	for _, v := range extraVertices {
		if !seen[v] {
			seen[v] = true
			g.V = append(g.V, v)
		}
	}
	for k, v := range vLabels {
		g.VLabels[k] = v
	}
	for k, e := range eLabels {
		g.ELabels[k] = e
	}
	return g
}

// Copy returns an independent Graph with the same vertices, edges, and
// labels.
func (g *Graph[V, E]) Copy() *Graph[V, E] {
	out := &Graph[V, E]{
		V:       append([]int(nil), g.V...),
		E:       append([]Edge(nil), g.E...),
		VLabels: make(map[int]V, len(g.VLabels)),
		ELabels: make(map[int]E, len(g.ELabels)),
	}
	for k, v := range g.VLabels {
		out.VLabels[k] = v
	}
	for k, e := range g.ELabels {
		out.ELabels[k] = e
	}
	return out
}

// AdjacencyDict groups outgoing edges by their From vertex: From -> list of
// (EdgeID, To), mirroring Graph.adjacency_dict.
func (g *Graph[V, E]) AdjacencyDict() map[int][]Edge {
	out := map[int][]Edge{}
	for _, e := range g.E {
		out[e.From] = append(out[e.From], e)
	}
	return out
}

// Reverse returns a Graph with every edge's direction flipped, labels
// carried over unchanged.
func (g *Graph[V, E]) Reverse() *Graph[V, E] {
	out := g.Copy()
	for i, e := range out.E {
		out.E[i] = Edge{ID: e.ID, From: e.To, To: e.From}
	}
	return out
}

// VertexNextID returns one more than the largest existing vertex id, for
// allocating a fresh vertex (e.g. a collapsed-cycle supernode).
func (g *Graph[V, E]) VertexNextID() int {
	max := -1
	for _, v := range g.V {
		if v > max {
			max = v
		}
	}
	return max + 1
}

// EdgeNextID returns one more than the largest existing edge id.
func (g *Graph[V, E]) EdgeNextID() int {
	max := -1
	for _, e := range g.E {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

// Subset restricts the graph to the given vertices and the edges fully
// contained within them, mirroring Graph.subset.
func (g *Graph[V, E]) Subset(keep []int) *Graph[V, E] {
	keepSet := toSet(keep)
	out := &Graph[V, E]{VLabels: map[int]V{}, ELabels: map[int]E{}}
	for _, v := range g.V {
		if keepSet[v] {
			out.V = append(out.V, v)
			if label, ok := g.VLabels[v]; ok {
				out.VLabels[v] = label
			}
		}
	}
	for _, e := range g.E {
		if keepSet[e.From] && keepSet[e.To] {
			out.E = append(out.E, e)
			if label, ok := g.ELabels[e.ID]; ok {
				out.ELabels[e.ID] = label
			}
		}
	}
	return out
}

// Union combines g and other, whose edge id sets must be disjoint,
// mirroring Graph.union.
func (g *Graph[V, E]) Union(other *Graph[V, E]) *Graph[V, E] {
	out := &Graph[V, E]{VLabels: map[int]V{}, ELabels: map[int]E{}}
	vSet := map[int]bool{}
	for _, v := range g.V {
		if !vSet[v] {
			vSet[v] = true
			out.V = append(out.V, v)
		}
	}
	for _, v := range other.V {
		if !vSet[v] {
			vSet[v] = true
			out.V = append(out.V, v)
		}
	}
	out.E = append(out.E, g.E...)
	out.E = append(out.E, other.E...)
	for k, v := range g.VLabels {
		out.VLabels[k] = v
	}
	for k, v := range other.VLabels {
		out.VLabels[k] = v
	}
	for k, e := range g.ELabels {
		out.ELabels[k] = e
	}
	for k, e := range other.ELabels {
		out.ELabels[k] = e
	}
	return out
}

// Map rebuilds the graph by filtering vertices with vKeep and
// transforming/dropping edges with eMap, mirroring Graph.map. eMap returns
// (newEdge, false) to drop an edge, or the (possibly rewritten) edge with
// true to keep it. A nil vKeep keeps every vertex; a nil eMap keeps every
// edge unchanged. Regardless of eMap, an edge whose resulting endpoint
// isn't a kept vertex is auto-dropped — a custom eMap avoids this only by
// rewiring that endpoint onto a vertex that is kept.
func (g *Graph[V, E]) Map(vKeep func(id int) bool, eMap func(e Edge) (Edge, bool)) *Graph[V, E] {
	out := &Graph[V, E]{VLabels: map[int]V{}, ELabels: map[int]E{}}
	newVSet := map[int]bool{}
	for _, v := range g.V {
		if vKeep == nil || vKeep(v) {
			out.V = append(out.V, v)
			newVSet[v] = true
		}
	}
	newESet := map[int]bool{}
	for _, e := range g.E {
		ne := e
		ok := true
		if eMap != nil {
			ne, ok = eMap(e)
		}
		if ok && (!newVSet[ne.From] || !newVSet[ne.To]) {
			ok = false
		}
		if ok {
			out.E = append(out.E, ne)
			newESet[ne.ID] = true
		}
	}
	for k, v := range g.VLabels {
		if newVSet[k] {
			out.VLabels[k] = v
		}
	}
	for k, e := range g.ELabels {
		if newESet[k] {
			out.ELabels[k] = e
		}
	}
	return out
}

func toSet(xs []int) map[int]bool {
	out := make(map[int]bool, len(xs))
	for _, x := range xs {
		out[x] = true
	}
	return out
}

func sortedInts(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}
