package digraph

import (
	"errors"
	"sort"
)

// ErrNotReachable is returned by PathFromTo when no path exists between the
// requested vertices.
var ErrNotReachable = errors.New("digraph: target vertex not reachable")

// Tarjan returns the graph's strongly connected components, each as a list
// of vertex ids, in the order Tarjan's algorithm discovers them. A
// single-vertex component with no self-loop is still reported, matching
// race2/graph/algorithm.py's tarjan.
func Tarjan[V any, E any](g *Graph[V, E]) [][]int {
	adj := g.AdjacencyDict()

	var index int
	indexOf := map[int]int{}
	lowlink := map[int]int{}
	onStack := map[int]bool{}
	var stack []int
	var sccs [][]int

	var strongConnect func(v int)
	strongConnect = func(v int) {
		indexOf[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range adj[v] {
			w := e.To
			if _, seen := indexOf[w]; !seen {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indexOf[w] < lowlink[v] {
					lowlink[v] = indexOf[w]
				}
			}
		}

		if lowlink[v] == indexOf[v] {
			var scc []int
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range g.V {
		if _, seen := indexOf[v]; !seen {
			strongConnect(v)
		}
	}
	return sccs
}

// CollectCycles returns the strongly connected components of size greater
// than one, i.e. the true cycles Tarjan found (a lone self-loop vertex is
// not reported here — see CleanGraph for self-loop handling).
func CollectCycles[V any, E any](g *Graph[V, E]) [][]int {
	var out [][]int
	for _, scc := range Tarjan(g) {
		if len(scc) > 1 {
			out = append(out, scc)
		}
	}
	return out
}

// Cycle is the supernode substituted for a collapsed strongly connected
// component: SubGraph retains the induced subgraph (cycle members plus
// their immediate predecessors/successors) for rendering, Members lists the
// original vertex ids that were folded into this supernode.
type Cycle[E any] struct {
	SubGraph *Graph[any, E]
	Members  []int
}

// VertexCount and MemberCount expose SubGraph/Members' sizes without a
// caller needing to know E, so non-generic code (e.g. render's
// graph_render_labels pass) can render "Cycle(|V|,|members|)" for any
// *Cycle[E] via a plain type assertion to an interface, rather than a
// generic type switch.
func (c *Cycle[E]) VertexCount() int { return len(c.SubGraph.V) }
func (c *Cycle[E]) MemberCount() int { return len(c.Members) }

// CollapseCycles repeatedly folds the first remaining cycle into a fresh
// supernode vertex labelled with a *Cycle, until the graph is acyclic,
// mirroring race2/graph/algorithm.py's collapse_cycles. The returned
// graph's vertex labels are `any`: either an original V (boxed) for
// untouched vertices, or a *Cycle[E] for a folded supernode.
func CollapseCycles[V any, E any](g *Graph[V, E]) *Graph[any, E] {
	rtn := &Graph[any, E]{
		V:       append([]int(nil), g.V...),
		E:       append([]Edge(nil), g.E...),
		VLabels: map[int]any{},
		ELabels: map[int]E{},
	}
	for k, v := range g.VLabels {
		rtn.VLabels[k] = v
	}
	for k, e := range g.ELabels {
		rtn.ELabels[k] = e
	}

	for {
		cycles := CollectCycles(rtn)
		if len(cycles) == 0 {
			break
		}
		cycle := cycles[0]
		cycleSet := toSet(cycle)

		adj := rtn.AdjacencyDict()
		radj := rtn.Reverse().AdjacencyDict()

		fromSet := map[int]bool{}
		for _, x := range cycle {
			for _, e := range radj[x] {
				if !cycleSet[e.To] {
					fromSet[e.To] = true
				}
			}
		}
		intoSet := map[int]bool{}
		for _, x := range cycle {
			for _, e := range adj[x] {
				if !cycleSet[e.To] {
					intoSet[e.To] = true
				}
			}
		}

		subGraph := rtn.Map(
			func(id int) bool { return cycleSet[id] || fromSet[id] || intoSet[id] },
			func(e Edge) (Edge, bool) {
				if cycleSet[e.From] || cycleSet[e.To] {
					return e, true
				}
				return e, false
			},
		)

		rtn = rtn.Copy()
		newID := rtn.VertexNextID()
		rtn.V = append(rtn.V, newID)
		rtn.VLabels[newID] = &Cycle[E]{SubGraph: subGraph, Members: append([]int(nil), cycle...)}

		rtn = rtn.Map(
			func(id int) bool { return !cycleSet[id] },
			func(e Edge) (Edge, bool) {
				switch {
				case fromSet[e.From] && cycleSet[e.To]:
					return Edge{ID: e.ID, From: e.From, To: newID}, true
				case cycleSet[e.From] && intoSet[e.To]:
					return Edge{ID: e.ID, From: newID, To: e.To}, true
				case cycleSet[e.From] && cycleSet[e.To]:
					return e, false
				default:
					return e, true
				}
			},
		)
	}
	return rtn
}

// CleanGraph removes self-loops and collapses parallel edges sharing the
// same (From, To) pair down to the lowest-id edge, mirroring
// race2/graph/algorithm.py's clean_graph.
func CleanGraph[V any, E any](g *Graph[V, E]) *Graph[V, E] {
	noSelfLoops := g.Map(nil, func(e Edge) (Edge, bool) {
		return e, e.From != e.To
	})

	type key struct{ from, to int }
	best := map[key]int{}
	for _, e := range noSelfLoops.E {
		k := key{e.From, e.To}
		if existing, ok := best[k]; !ok || e.ID < existing {
			best[k] = e.ID
		}
	}
	keepIDs := map[int]bool{}
	for _, id := range best {
		keepIDs[id] = true
	}

	return noSelfLoops.Map(nil, func(e Edge) (Edge, bool) {
		return e, keepIDs[e.ID]
	})
}

// Leaves returns the vertices with no outgoing edges, in the order they
// appear in g.V.
func Leaves[V any, E any](g *Graph[V, E]) []int {
	adj := g.AdjacencyDict()
	var out []int
	for _, v := range g.V {
		if len(adj[v]) == 0 {
			out = append(out, v)
		}
	}
	return out
}

// Paint walks the reverse graph from start and returns every vertex that
// can reach start, including start itself, mirroring
// race2/graph/algorithm.py's paint.
func Paint[V any, E any](g *Graph[V, E], start int) map[int]bool {
	radj := g.Reverse().AdjacencyDict()
	visited := map[int]bool{}
	queue := []int{start}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if visited[v] {
			continue
		}
		visited[v] = true
		for _, e := range radj[v] {
			queue = append(queue, e.To)
		}
	}
	return visited
}

// PathFromTo returns the sequence of edge ids forming one shortest directed
// path from `from` to `to`, via breadth-first search over the forward
// adjacency. On a multidigraph, a vertex list can't identify which of
// several parallel edges was traversed, so the path is reported as edge
// ids, not vertices. Returns ErrNotReachable if no such path exists.
func PathFromTo[V any, E any](g *Graph[V, E], from, to int) ([]int, error) {
	if from == to {
		return []int{}, nil
	}

	adj := g.AdjacencyDict()
	visited := map[int]bool{from: true}
	prev := map[int]pathStep{}
	queue := []int{from}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		neighbors := append([]Edge(nil), adj[v]...)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].To < neighbors[j].To })

		for _, e := range neighbors {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = pathStep{viaEdge: e.ID, prevV: v}
			if e.To == to {
				return reconstructEdgePath(prev, from, to), nil
			}
			queue = append(queue, e.To)
		}
	}
	return nil, ErrNotReachable
}

// pathStep records, for one vertex reached during PathFromTo's search, the
// edge that reached it and the vertex it came from.
type pathStep struct {
	viaEdge int
	prevV   int
}

func reconstructEdgePath(prev map[int]pathStep, from, to int) []int {
	var out []int
	for v := to; v != from; {
		s := prev[v]
		out = append(out, s.viaEdge)
		v = s.prevV
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
