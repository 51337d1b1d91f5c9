package fstrips

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// StateAtomIndexer maps state variables onto two dense banks, one for
// predicate (boolean) variables and one for multivalued variables. Splitting
// the banks keeps boolean-heavy problems compact and lets fully boolean or
// fully multivalued problems skip the indirection entirely.
//
// One indexer is built per problem and shared by every state.
type StateAtomIndexer struct {
	index []bankSlot
	nBool int
	nInt  int
}

type bankSlot struct {
	boolean bool
	pos     int
}

// NewStateAtomIndexer derives the bank layout from the problem's variable
// table.
func NewStateAtomIndexer(info *ProblemInfo) *StateAtomIndexer {
	n := info.NumVariables()
	si := &StateAtomIndexer{index: make([]bankSlot, n)}
	for v := 0; v < n; v++ {
		if info.IsPredicative(VariableIdx(v)) {
			si.index[v] = bankSlot{boolean: true, pos: si.nBool}
			si.nBool++
		} else {
			si.index[v] = bankSlot{boolean: false, pos: si.nInt}
			si.nInt++
		}
	}
	return si
}

// NumVariables returns the number of variables the indexer covers.
func (si *StateAtomIndexer) NumVariables() int { return len(si.index) }

func (si *StateAtomIndexer) get(s *State, v VariableIdx) ObjectIdx {
	// Fully boolean or fully multivalued states need no deindexing.
	if len(si.index) == si.nBool {
		if s.boolValues[v] {
			return ObjectTrue
		}
		return ObjectFalse
	}
	if len(si.index) == si.nInt {
		return s.intValues[v]
	}
	slot := si.index[v]
	if slot.boolean {
		if s.boolValues[slot.pos] {
			return ObjectTrue
		}
		return ObjectFalse
	}
	return s.intValues[slot.pos]
}

func (si *StateAtomIndexer) set(s *State, v VariableIdx, value ObjectIdx) {
	slot := si.index[v]
	if slot.boolean {
		s.boolValues[slot.pos] = value != ObjectFalse
		return
	}
	s.intValues[slot.pos] = value
}

// State is a total assignment from state variables to values. Predicate
// variables default to false and multivalued variables to the first value
// of their domain (see NewState). States are value-comparable and hashable; the hash is
// recomputed once after each batch of mutations, never in the middle.
//
// A State is exclusively owned by its creator. Successor construction
// copies the banks, so parent states are never aliased.
type State struct {
	info       *ProblemInfo
	indexer    *StateAtomIndexer
	boolValues []bool
	intValues  []ObjectIdx
	hash       uint64
}

// NewState builds a state from an initial atom list. Variables not covered
// by the list default to false (predicates) or to the first value of their
// domain (multivalued), mirroring the zero-initialised banks of the
// problem description. Atoms with out-of-domain values are rejected.
func NewState(info *ProblemInfo, indexer *StateAtomIndexer, atoms []Atom) (*State, error) {
	s := &State{
		info:       info,
		indexer:    indexer,
		boolValues: make([]bool, indexer.nBool),
		intValues:  make([]ObjectIdx, indexer.nInt),
	}
	for v := 0; v < info.NumVariables(); v++ {
		if !info.IsPredicative(VariableIdx(v)) {
			indexer.set(s, VariableIdx(v), info.VariableDomain(VariableIdx(v))[0])
		}
	}
	for _, a := range atoms {
		if !info.CheckValue(a.Variable, a.Value) {
			return nil, fmt.Errorf("%w: initial atom %s outside the domain of %s",
				ErrInconsistentProblem, a, info.VariableName(a.Variable))
		}
		indexer.set(s, a.Variable, a.Value)
	}
	s.updateHash()
	return s, nil
}

// Successor builds the state reached from s by applying a batch of atoms.
// The parent state is left untouched.
func (s *State) Successor(atoms []Atom) *State {
	next := &State{
		info:       s.info,
		indexer:    s.indexer,
		boolValues: append([]bool(nil), s.boolValues...),
		intValues:  append([]ObjectIdx(nil), s.intValues...),
	}
	next.accumulate(atoms)
	return next
}

// accumulate applies a changeset and refreshes the hash afterwards.
func (s *State) accumulate(atoms []Atom) {
	for _, a := range atoms {
		s.indexer.set(s, a.Variable, a.Value)
	}
	s.updateHash()
}

// Info returns the problem description the state was built against.
func (s *State) Info() *ProblemInfo { return s.info }

// Value returns the current value of a state variable.
func (s *State) Value(v VariableIdx) ObjectIdx { return s.indexer.get(s, v) }

// Contains reports whether the state contains the atom, i.e. the variable
// holds exactly that value.
func (s *State) Contains(a Atom) bool { return s.Value(a.Variable) == a.Value }

// Hash returns the state's precomputed hash.
func (s *State) Hash() uint64 { return s.hash }

// Equal reports value equality of two states over the same problem.
func (s *State) Equal(other *State) bool {
	if s.hash != other.hash {
		return false
	}
	for i := range s.boolValues {
		if s.boolValues[i] != other.boolValues[i] {
			return false
		}
	}
	for i := range s.intValues {
		if s.intValues[i] != other.intValues[i] {
			return false
		}
	}
	return true
}

// Atoms returns the state as an atom list, one atom per variable.
func (s *State) Atoms() []Atom {
	out := make([]Atom, s.info.NumVariables())
	for v := range out {
		out[v] = Atom{Variable: VariableIdx(v), Value: s.Value(VariableIdx(v))}
	}
	return out
}

func (s *State) updateHash() {
	h := fnv.New64a()
	var buf [8]byte
	for _, b := range s.boolValues {
		if b {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
		_, _ = h.Write(buf[:1])
	}
	for _, v := range s.intValues {
		u := uint64(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		_, _ = h.Write(buf[:8])
	}
	s.hash = h.Sum64()
}

// String renders the state compactly: true predicates by name, multivalued
// variables as name=value, sorted alphabetically.
func (s *State) String() string {
	var parts []string
	for v := 0; v < s.info.NumVariables(); v++ {
		val := s.Value(VariableIdx(v))
		if s.info.IsPredicative(VariableIdx(v)) {
			if val == ObjectTrue {
				parts = append(parts, s.info.VariableName(VariableIdx(v)))
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", s.info.VariableName(VariableIdx(v)), s.info.ObjectName(val)))
	}
	sort.Strings(parts)
	return "State[" + strings.Join(parts, ", ") + "]"
}
