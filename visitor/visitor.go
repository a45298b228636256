// Package visitor implements the breadth-first (or depth-first) walk over
// every reachable interleaving of an ExecutionFactory's processes,
// recording the labelled multidigraph of ExecutionStates as it goes.
package visitor

import (
	"context"
	"sort"

	"github.com/race-explorer/racegraph/emit"
	"github.com/race-explorer/racegraph/execstate"
	"github.com/race-explorer/racegraph/execution"
	"github.com/race-explorer/racegraph/metrics"
	"github.com/race-explorer/racegraph/process"
)

type edgeKey struct {
	state string
	pid   process.ID
}

// postState is one distinct continuation recorded for an edge key, with how
// many times that edge produced it — the multiset spec.md §3 requires to
// capture non-deterministic providers (e.g. llmprocess) where the same
// (pre_state, pid) can advance to different post-states across
// instantiations.
type postState struct {
	state *execstate.State
	count int
}

// edgeStates is the multiset of post-states recorded for one (pre-state,
// process) edge key, in first-seen order. "first recorded post-state" (the
// tie-break SplitPathVisited uses) is order[0].
type edgeStates struct {
	order []string
	byKey map[string]*postState
}

func (es *edgeStates) record(s *execstate.State) {
	if es.byKey == nil {
		es.byKey = map[string]*postState{}
	}
	key := s.Key()
	if ps, ok := es.byKey[key]; ok {
		ps.count++
		return
	}
	es.byKey[key] = &postState{state: s, count: 1}
	es.order = append(es.order, key)
}

func (es *edgeStates) first() string {
	return es.order[0]
}

func (es *edgeStates) total() int {
	total := 0
	for _, ps := range es.byKey {
		total += ps.count
	}
	return total
}

// Visitor drives one ExecutionFactory across every reachable interleaving,
// recording a state as the canonical (pre-state, process) -> post-state
// multidigraph. See race2/abstract.py's Visitor for the original
// next_sub/decide_next_path/split_path_visited algorithm this ports.
type Visitor struct {
	factory    execution.Factory
	depthFirst bool
	maxIter    int

	visitedEdges map[edgeKey]*edgeStates
	stateByKey   map[string]*execstate.State
	rootStates   map[string]*execstate.State

	queue *deque[execution.Path]

	pathsFoundCtr    int
	instantiationCtr int
	edgeVisitCtr     int

	pendingSeeds []execution.Path

	emitter emit.Emitter
	metrics *metrics.Collector
}

// New constructs a Visitor and immediately instantiates the factory once
// with an empty seed path, mirroring Visitor.__post_init__'s
// self.next_sub(Path([])) call.
func New(ctx context.Context, factory execution.Factory, opts ...Option) (*Visitor, error) {
	v := &Visitor{
		factory:      factory,
		visitedEdges: map[edgeKey]*edgeStates{},
		stateByKey:   map[string]*execstate.State{},
		rootStates:   map[string]*execstate.State{},
		queue:        newDeque[execution.Path](),
		emitter:      emit.Null{},
	}
	for _, opt := range opts {
		opt(v)
	}

	n, err := v.NextSub(ctx, execution.Path{})
	if err != nil {
		return nil, err
	}
	v.pathsFoundCtr += n

	for _, seed := range v.pendingSeeds {
		if v.CanPushPath(seed) {
			v.pushPath(seed)
		}
	}
	return v, nil
}

// PathsFound, InstantiationCount, and EdgeVisitCount report the Visitor's
// running counters.
func (v *Visitor) PathsFound() int        { return v.pathsFoundCtr }
func (v *Visitor) InstantiationCount() int { return v.instantiationCtr }
func (v *Visitor) EdgeVisitCount() int    { return v.edgeVisitCtr }

// VisitedVertices returns every distinct ExecutionState seen as either
// endpoint of a recorded edge.
func (v *Visitor) VisitedVertices() []*execstate.State {
	out := make([]*execstate.State, 0, len(v.stateByKey))
	for _, s := range v.stateByKey {
		out = append(out, s)
	}
	return out
}

// VisitedEdgeCount returns the number of distinct (state, process) edges
// recorded so far.
func (v *Visitor) VisitedEdgeCount() int { return len(v.visitedEdges) }

// CanPushPath reports whether path has at least one unvisited edge (and is
// therefore worth queuing), mirroring Visitor._can_push_path.
func (v *Visitor) CanPushPath(path execution.Path) bool {
	_, _, unvisited := v.SplitPathVisited(path)
	return len(unvisited) > 0
}

func (v *Visitor) pushPath(path execution.Path) {
	if v.depthFirst {
		v.queue.PushFront(path)
	} else {
		v.queue.PushBack(path)
	}
}

// SplitPathVisited walks path from each recorded root state, returning the
// prefix that is already a recorded chain of edges and the remaining
// unvisited suffix. The bool return is always true in the current
// algorithm (ported as-is from Visitor.split_path_visited, which never
// actually produces false along any branch).
func (v *Visitor) SplitPathVisited(path execution.Path) (bool, execution.Path, execution.Path) {
	roots := make([]string, 0, len(v.rootStates))
	for k := range v.rootStates {
		roots = append(roots, k)
	}
	sort.Strings(roots)

	for _, root := range roots {
		state := root
		for i, pid := range path {
			entry, ok := v.visitedEdges[edgeKey{state: state, pid: pid}]
			if !ok {
				return true, path[:i], path[i:]
			}
			state = entry.first()
		}
	}
	return true, path, execution.Path{}
}

// DecideNextPath merges a seed path with a candidate path when they agree
// on their common prefix, preferring whichever is longer past that prefix.
// Returns ok=false when the two paths diverge before either ends,
// mirroring Visitor.decide_next_path.
func (v *Visitor) DecideNextPath(seed, candidate execution.Path) (execution.Path, bool) {
	prefixLen := len(seed)
	if len(candidate) < prefixLen {
		prefixLen = len(candidate)
	}
	for i := 0; i < prefixLen; i++ {
		if seed[i] != candidate[i] {
			return nil, false
		}
	}

	merged := append(execution.Path{}, seed[:prefixLen]...)
	if len(candidate) > len(seed) {
		merged = append(merged, candidate[prefixLen:]...)
	} else {
		merged = append(merged, seed[prefixLen:]...)
	}
	return merged, true
}

type candidate struct {
	hasPreferred bool
	pid          process.ID
}

// NextSub instantiates the factory once and drives it to exhaustion,
// steering toward seed when a live process's continuation agrees with it,
// queuing every other viable continuation along the way. Returns the
// number of candidate continuations discovered (not necessarily all
// queued — duplicates found again later are filtered by CanPushPath).
func (v *Visitor) NextSub(ctx context.Context, seed execution.Path) (int, error) {
	v.instantiationCtr++
	if v.metrics != nil {
		v.metrics.IncInstantiations()
	}

	ex, err := v.factory()
	if err != nil {
		return 0, err
	}
	ex.SetInstantiationID(v.instantiationCtr)

	rootState := ex.State()
	v.rootStates[rootState.Key()] = rootState
	v.stateByKey[rootState.Key()] = rootState

	pathsFound := 0

	for {
		curPath := ex.Path()
		available := ex.Available()

		var candidates []candidate
		for _, pid := range available {
			path := appendPID(curPath, pid)
			check := path
			hasPreferred := false
			if preferred, ok := v.DecideNextPath(seed, path); ok {
				check = preferred
				hasPreferred = true
			}
			if v.CanPushPath(check) {
				candidates = append(candidates, candidate{hasPreferred: hasPreferred, pid: pid})
			}
		}

		if len(candidates) == 0 {
			break
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].hasPreferred != candidates[j].hasPreferred {
				return candidates[i].hasPreferred
			}
			return candidates[i].pid < candidates[j].pid
		})

		pathsFound += len(candidates)

		next := candidates[0]
		for _, c := range candidates[1:] {
			v.pushPath(appendPID(curPath, c.pid))
		}

		preState := ex.State()
		if _, err := ex.Next(ctx, next.pid); err != nil {
			return pathsFound, err
		}
		v.edgeVisitCtr++
		if v.metrics != nil {
			v.metrics.IncEdgeVisits()
		}
		post := ex.State()

		key := edgeKey{state: preState.Key(), pid: next.pid}
		entry, ok := v.visitedEdges[key]
		if !ok {
			entry = &edgeStates{}
			v.visitedEdges[key] = entry
		}
		entry.record(post)
		v.stateByKey[post.Key()] = post
	}

	if len(ex.Available()) > 0 {
		if err := ex.Stop(ctx); err != nil {
			return pathsFound, err
		}
	}

	return pathsFound, nil
}

// Next drains the queue, instantiating the factory once per surviving
// path, until the queue is empty (or WithMaxIter's bound is hit).
func (v *Visitor) Next(ctx context.Context) error {
	for v.queue.Len() > 0 {
		if v.maxIter > 0 && v.instantiationCtr >= v.maxIter {
			return ErrMaxIterExceeded
		}

		item, _ := v.queue.PopFront()
		if !v.CanPushPath(item) {
			continue
		}

		n, err := v.NextSub(ctx, item)
		if err != nil {
			return err
		}
		v.pathsFoundCtr += n
	}
	return nil
}

func appendPID(path execution.Path, pid process.ID) execution.Path {
	out := make(execution.Path, len(path)+1)
	copy(out, path)
	out[len(path)] = pid
	return out
}
