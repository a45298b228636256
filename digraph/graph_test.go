package digraph

import "testing"

func line() *Graph[string, string] {
	return FromAdjacencyList[string, string](
		[]EdgeSpec{{ID: 0, From: 1, To: 2}, {ID: 1, From: 2, To: 3}},
		nil, nil, nil,
	)
}

func TestFromAdjacencyListCollectsVertices(t *testing.T) {
	g := line()
	if len(g.V) != 3 {
		t.Fatalf("vertex count = %d, want 3", len(g.V))
	}
	if len(g.E) != 2 {
		t.Fatalf("edge count = %d, want 2", len(g.E))
	}
}

func TestCopyIsIndependent(t *testing.T) {
	g := line()
	cp := g.Copy()
	cp.V = append(cp.V, 99)
	if len(g.V) == len(cp.V) {
		t.Fatalf("mutating copy's vertices affected the original")
	}
}

func TestReverseFlipsEdges(t *testing.T) {
	g := line()
	r := g.Reverse()
	adj := r.AdjacencyDict()
	if len(adj[2]) != 1 || adj[2][0].To != 1 {
		t.Fatalf("reverse adjacency of 2 = %v, want edge to 1", adj[2])
	}
}

func TestVertexAndEdgeNextID(t *testing.T) {
	g := line()
	if id := g.VertexNextID(); id != 4 {
		t.Fatalf("VertexNextID = %d, want 4", id)
	}
	if id := g.EdgeNextID(); id != 2 {
		t.Fatalf("EdgeNextID = %d, want 2", id)
	}
}

func TestSubsetDropsOutOfScopeEdges(t *testing.T) {
	g := line()
	sub := g.Subset([]int{1, 2})
	if len(sub.V) != 2 {
		t.Fatalf("subset vertex count = %d, want 2", len(sub.V))
	}
	if len(sub.E) != 1 {
		t.Fatalf("subset edge count = %d, want 1 (edge 2->3 should be dropped)", len(sub.E))
	}
}

func TestUnionCombinesDisjointEdgeIDGraphs(t *testing.T) {
	a := FromAdjacencyList[string, string]([]EdgeSpec{{ID: 0, From: 1, To: 2}}, nil, nil, nil)
	b := FromAdjacencyList[string, string]([]EdgeSpec{{ID: 1, From: 3, To: 4}}, nil, nil, nil)
	u := a.Union(b)
	if len(u.V) != 4 || len(u.E) != 2 {
		t.Fatalf("union = %d vertices, %d edges, want 4, 2", len(u.V), len(u.E))
	}
}

func TestMapFiltersVerticesAndEdges(t *testing.T) {
	g := line()
	m := g.Map(func(id int) bool { return id != 3 }, nil)
	if len(m.V) != 2 {
		t.Fatalf("Map filtered vertex count = %d, want 2", len(m.V))
	}
	if len(m.E) != 1 {
		t.Fatalf("Map edge count = %d, want 1 (edge 2->3 auto-dropped with vertex 3)", len(m.E))
	}
}
