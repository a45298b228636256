package visitor

import (
	"sort"

	"github.com/race-explorer/racegraph/digraph"
	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/process"
)

// EdgeLabel is one recorded (pre_state, pid) -> post_state continuation's
// display data: Count is how many times this edge produced this specific
// post-state, Total is the sum across every post-state recorded for the
// same (pre_state, pid) key. Count == Total whenever the edge key is
// deterministic (only one post-state was ever observed); Count < Total
// signals the non-determinism spec.md §3 calls out (e.g. the same
// pre-state and process advancing differently across instantiations under
// an external-I/O provider).
type EdgeLabel struct {
	PID   process.ID
	Count int
	Total int
}

// Graph exports the Visitor's recorded (state, process) -> state
// multidigraph as a digraph.Graph, vertex-labelled with the
// ExecutionState it represents and edge-labelled with the process id
// stepped to traverse it plus its recorded visit counts. Vertex ids are
// assigned by sorting state keys, and edges by sorting (pre_state, pid)
// keys, each key's post-states taken in the order they were first
// recorded, so the same Visitor always exports the same numbering.
func (v *Visitor) Graph() *digraph.Graph[*execstate.State, EdgeLabel] {
	keys := make([]string, 0, len(v.stateByKey))
	for k := range v.stateByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vertexID := make(map[string]int, len(keys))
	for i, k := range keys {
		vertexID[k] = i
	}

	g := digraph.New[*execstate.State, EdgeLabel]()
	for _, k := range keys {
		g.V = append(g.V, vertexID[k])
		g.VLabels[vertexID[k]] = v.stateByKey[k]
	}

	edgeKeys := make([]edgeKey, 0, len(v.visitedEdges))
	for ek := range v.visitedEdges {
		edgeKeys = append(edgeKeys, ek)
	}
	sort.Slice(edgeKeys, func(i, j int) bool {
		if edgeKeys[i].state != edgeKeys[j].state {
			return edgeKeys[i].state < edgeKeys[j].state
		}
		return edgeKeys[i].pid < edgeKeys[j].pid
	})

	edgeID := 0
	for _, ek := range edgeKeys {
		entry := v.visitedEdges[ek]
		total := entry.total()
		for _, toKey := range entry.order {
			g.E = append(g.E, digraph.Edge{ID: edgeID, From: vertexID[ek.state], To: vertexID[toKey]})
			g.ELabels[edgeID] = EdgeLabel{PID: ek.pid, Count: entry.byKey[toKey].count, Total: total}
			edgeID++
		}
	}
	return g
}
