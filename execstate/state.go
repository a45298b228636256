// Package execstate implements ExecutionState, the per-Execution snapshot of
// process labels used as state-graph vertex identity.
package execstate

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/race-explorer/racegraph/process"
)

// State maps process.ID to process.Label. Two States are Equal iff their key
// sets are equal and every label compares equal under process.Label.Equal
// (exceptions collapse to their Kind). Hash is order-independent over keys so
// that ProcessIDs added in different orders across runs still hash alike.
//
// State is mutated in place only by Execution during a step; callers that
// need an independent snapshot must call Copy.
type State struct {
	labels map[process.ID]process.Label
}

// Zero returns an empty State.
func Zero() *State {
	return &State{labels: map[process.ID]process.Label{}}
}

// Set assigns the label for pid, creating or overwriting the entry.
func (s *State) Set(pid process.ID, label process.Label) {
	s.labels[pid] = label
}

// Get returns the label for pid and whether it is present.
func (s *State) Get(pid process.ID) (process.Label, bool) {
	l, ok := s.labels[pid]
	return l, ok
}

// Delete removes pid from the state; RenameProcess uses it to drop the old id.
func (s *State) Delete(pid process.ID) {
	delete(s.labels, pid)
}

// PIDs returns every key of the state, terminated processes included, in
// unspecified order.
func (s *State) PIDs() []process.ID {
	out := make([]process.ID, 0, len(s.labels))
	for pid := range s.labels {
		out = append(out, pid)
	}
	return out
}

// Copy returns an independent State with the same entries.
func (s *State) Copy() *State {
	cp := make(map[process.ID]process.Label, len(s.labels))
	for k, v := range s.labels {
		cp[k] = v
	}
	return &State{labels: cp}
}

// Equal reports whether s and other have the same key set and pairwise-equal
// labels (exceptions compared by Kind only, per process.Label.Equal).
func (s *State) Equal(other *State) bool {
	if other == nil {
		return false
	}
	if len(s.labels) != len(other.labels) {
		return false
	}
	for pid, label := range s.labels {
		otherLabel, ok := other.labels[pid]
		if !ok || !label.Equal(otherLabel) {
			return false
		}
	}
	return true
}

// Hash computes an order-independent hash: XOR of per-entry hashes, each
// entry mixing pid and label via a non-trivial combiner (fnv over a decimal
// encoding), per spec.md §9's "hash must be commutative across entries".
func (s *State) Hash() uint64 {
	var acc uint64
	for pid, label := range s.labels {
		h := fnv.New64a()
		fmt.Fprintf(h, "%d:%d:%s", pid, label.Kind(), labelIdentity(label))
		acc ^= h.Sum64()
	}
	return acc
}

// labelIdentity returns the string used for hash/Key purposes: for Failed
// labels this is the Kind alone (never the message), matching Equal.
func labelIdentity(label process.Label) string {
	if f, ok := label.(process.Failed); ok {
		return f.Kind_
	}
	return label.String()
}

// Key returns a canonical string encoding of the state, suitable for use as
// a Go map key (Go maps cannot key on a type with custom Equal/Hash).
// Entries are sorted by pid so that insertion order never affects the key.
func (s *State) Key() string {
	pids := s.PIDs()
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	out := make([]byte, 0, 16*len(pids))
	for _, pid := range pids {
		label := s.labels[pid]
		out = append(out, fmt.Sprintf("%d=%d:%s|", pid, label.Kind(), labelIdentity(label))...)
	}
	return string(out)
}

// String renders the state as "(pid:label pid:label ...)" sorted by pid, the
// same order used for Key and for render.Labels' ExecutionState rendering.
func (s *State) String() string {
	pids := s.PIDs()
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	out := "("
	for i, pid := range pids {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d:%s", pid, s.labels[pid])
	}
	return out + ")"
}

// Len reports the number of entries.
func (s *State) Len() int { return len(s.labels) }
