package fstrips

import "fmt"

// AtomIndex is an immutable bijection between ground atoms and dense
// integer indices. It is built once per problem and shared read-only by
// every heuristic evaluation; the flat layer and support arrays of the
// relaxed planning graph are addressed by these indices.
//
// Indices are laid out variable-major: all atoms of variable 0 first, in
// ascending value order, then all atoms of variable 1, and so on. Index is
// O(1) through a per-variable value map; Atom is a binary search over the
// per-variable offsets.
type AtomIndex struct {
	offsets []int               // per variable, index of its first atom
	values  [][]ObjectIdx       // per variable, ascending domain values
	pos     []map[ObjectIdx]int // per variable, value -> position in values
	size    int
}

// NewAtomIndex builds the atom index for every state variable of the
// problem. The index covers the full declared domain of each variable.
func NewAtomIndex(info *ProblemInfo) *AtomIndex {
	n := info.NumVariables()
	idx := &AtomIndex{
		offsets: make([]int, n),
		values:  make([][]ObjectIdx, n),
		pos:     make([]map[ObjectIdx]int, n),
	}
	next := 0
	for v := 0; v < n; v++ {
		dom := info.VariableDomain(VariableIdx(v))
		idx.offsets[v] = next
		idx.values[v] = dom
		m := make(map[ObjectIdx]int, len(dom))
		for i, val := range dom {
			m[val] = i
		}
		idx.pos[v] = m
		next += len(dom)
	}
	idx.size = next
	return idx
}

// Size returns the total number of indexed atoms.
func (ai *AtomIndex) Size() int { return ai.size }

// Index returns the dense index of an atom. The second result is false for
// atoms whose value lies outside the variable's domain.
func (ai *AtomIndex) Index(a Atom) (AtomIdx, bool) {
	if int(a.Variable) < 0 || int(a.Variable) >= len(ai.offsets) {
		return 0, false
	}
	p, ok := ai.pos[a.Variable][a.Value]
	if !ok {
		return 0, false
	}
	return AtomIdx(ai.offsets[a.Variable] + p), true
}

// MustIndex is Index for atoms known to be well-formed; it panics on
// out-of-domain atoms, which indicates a bug in the caller.
func (ai *AtomIndex) MustIndex(a Atom) AtomIdx {
	i, ok := ai.Index(a)
	if !ok {
		panic(fmt.Sprintf("fstrips: atom %s outside the indexed domain", a))
	}
	return i
}

// Atom returns the atom at a dense index.
func (ai *AtomIndex) Atom(i AtomIdx) Atom {
	// Binary search over offsets for the last variable whose first index
	// is at most i.
	lo, hi := 0, len(ai.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ai.offsets[mid] <= int(i) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Atom{Variable: VariableIdx(lo), Value: ai.values[lo][int(i)-ai.offsets[lo]]}
}

// VariableAtoms returns the dense indices of every atom over the given
// variable, ascending.
func (ai *AtomIndex) VariableAtoms(v VariableIdx) []AtomIdx {
	out := make([]AtomIdx, len(ai.values[v]))
	for i := range out {
		out[i] = AtomIdx(ai.offsets[v] + i)
	}
	return out
}
