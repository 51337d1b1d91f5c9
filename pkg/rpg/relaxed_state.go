package rpg

import (
	"sort"
	"strings"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// RelaxedState holds, for every state variable, the set of values reachable
// so far in the delete-relaxed graph. The sets are monotone: Accumulate
// only ever adds values. A relaxed state is created per heuristic
// evaluation, seeded from a search state, and owned exclusively by that
// evaluation.
type RelaxedState struct {
	info  *fstrips.ProblemInfo
	atoms *fstrips.AtomIndex
	sets  []*ValueSet
	vals  [][]fstrips.ObjectIdx // per variable, reachable values ascending
	count int
}

// NewRelaxedState seeds a relaxed state from a full state: each variable's
// reachable set starts as the singleton of its current value.
func NewRelaxedState(seed *fstrips.State, atoms *fstrips.AtomIndex) *RelaxedState {
	info := seed.Info()
	n := info.NumVariables()
	r := &RelaxedState{
		info:  info,
		atoms: atoms,
		sets:  make([]*ValueSet, n),
		vals:  make([][]fstrips.ObjectIdx, n),
	}
	for v := 0; v < n; v++ {
		dom := info.VariableDomain(fstrips.VariableIdx(v))
		r.sets[v] = NewValueSet(len(dom))
		r.add(fstrips.Atom{Variable: fstrips.VariableIdx(v), Value: seed.Value(fstrips.VariableIdx(v))})
	}
	return r
}

// Info returns the problem description the relaxed state ranges over.
func (r *RelaxedState) Info() *fstrips.ProblemInfo { return r.info }

// Contains reports whether the atom's value is reachable for its variable.
func (r *RelaxedState) Contains(a fstrips.Atom) bool {
	i, ok := r.atoms.Index(a)
	if !ok {
		return false
	}
	return r.sets[a.Variable].Has(r.position(i, a.Variable))
}

// Reachable returns the reachable values of a variable in ascending order.
// The returned slice is owned by the relaxed state; callers must not
// modify it.
func (r *RelaxedState) Reachable(v fstrips.VariableIdx) []fstrips.ObjectIdx {
	return r.vals[v]
}

// NumAtoms returns the total number of reachable atoms across variables.
func (r *RelaxedState) NumAtoms() int { return r.count }

// Accumulate absorbs a batch of novel atoms into the reachable sets.
func (r *RelaxedState) Accumulate(novel []fstrips.Atom) {
	for _, a := range novel {
		r.add(a)
	}
}

func (r *RelaxedState) add(a fstrips.Atom) {
	i, ok := r.atoms.Index(a)
	if !ok {
		return
	}
	if !r.sets[a.Variable].Add(r.position(i, a.Variable)) {
		return
	}
	r.count++
	vals := r.vals[a.Variable]
	at := sort.Search(len(vals), func(k int) bool { return vals[k] >= a.Value })
	vals = append(vals, 0)
	copy(vals[at+1:], vals[at:])
	vals[at] = a.Value
	r.vals[a.Variable] = vals
}

// position converts an atom index into the position of its value inside
// the variable's domain, using the variable-major layout of the atom index.
func (r *RelaxedState) position(i fstrips.AtomIdx, v fstrips.VariableIdx) int {
	first := r.atoms.MustIndex(fstrips.Atom{Variable: v, Value: r.info.VariableDomain(v)[0]})
	return int(i - first)
}

// String renders the reachable sets of all variables, for layer traces.
func (r *RelaxedState) String() string {
	var b strings.Builder
	b.WriteString("Relaxed[")
	for v := 0; v < r.info.NumVariables(); v++ {
		if v > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.info.VariableName(fstrips.VariableIdx(v)))
		b.WriteString("={")
		for i, val := range r.vals[v] {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(r.info.ObjectName(val))
		}
		b.WriteString("}")
	}
	b.WriteString("]")
	return b.String()
}
