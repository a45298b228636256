package visitor

import (
	"sort"

	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/execution"
	"github.com/race-explorer/racegraph/process"
)

// SpanningTreeNode is one yielded frame of a spanning-tree walk: the
// process-id path taken to reach it, the full chain of states visited
// along that path (states[0] is a root), and the processes still live at
// the frontier.
type SpanningTreeNode struct {
	Path           execution.Path
	States         []*execstate.State
	NextProcessIDs []process.ID
}

// SpanningTree walks the recorded edge multidigraph breadth-first from the
// root states, yielding every frame reached. A path never revisits a state
// already in its own chain (preventing infinite walks around a true
// cycle); when trulySpanning is true, a state visited by ANY prior path is
// also skipped, yielding a true spanning tree instead of every simple path.
//
// Ported eagerly from Visitor.spanning_tree's generator: Go code that
// wants early termination should break out of its own range loop over the
// returned slice rather than relying on generator laziness.
func (v *Visitor) SpanningTree(trulySpanning bool) []SpanningTreeNode {
	type frame struct {
		path   execution.Path
		states []*execstate.State
	}

	roots := make([]*execstate.State, 0, len(v.rootStates))
	for _, s := range v.rootStates {
		roots = append(roots, s)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Key() < roots[j].Key() })

	queue := make([]frame, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, frame{path: execution.Path{}, states: []*execstate.State{r}})
	}
	globallyVisited := map[string]bool{}

	var out []SpanningTreeNode
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		last := f.states[len(f.states)-1]
		nextPIDs := v.outgoingPIDs(last.Key())

		out = append(out, SpanningTreeNode{
			Path:           f.path,
			States:         f.states,
			NextProcessIDs: nextPIDs,
		})

		for _, pid := range nextPIDs {
			nextKey := v.visitedEdges[edgeKey{state: last.Key(), pid: pid}].first()
			nextState := v.stateByKey[nextKey]

			if stateInChain(f.states, nextKey) {
				continue
			}
			if trulySpanning {
				if globallyVisited[nextKey] {
					continue
				}
				globallyVisited[nextKey] = true
			}

			queue = append(queue, frame{
				path:   appendPID(f.path, pid),
				states: append(append([]*execstate.State{}, f.states...), nextState),
			})
		}
	}
	return out
}

// outgoingPIDs returns, sorted for determinism, every process id recorded
// as an edge out of stateKey.
func (v *Visitor) outgoingPIDs(stateKey string) []process.ID {
	var out []process.ID
	for k := range v.visitedEdges {
		if k.state == stateKey {
			out = append(out, k.pid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func stateInChain(states []*execstate.State, key string) bool {
	for _, s := range states {
		if s.Key() == key {
			return true
		}
	}
	return false
}
