package fstrips

import "fmt"

// Problem bundles the immutable description a planner core consumes: the
// symbol/object index, the atom index and state bank layout, the initial
// state, the goal and state-constraint formulas, and the action tables.
// Everything except the initial state is shared read-only; evaluations and
// search nodes copy states as needed.
type Problem struct {
	Info    *ProblemInfo
	Atoms   *AtomIndex
	Indexer *StateAtomIndexer

	Init             *State
	Goal             Formula
	StateConstraints Formula

	Ground []*GroundAction
	Lifted []*LiftedAction
}

// NewProblem assembles and validates a problem. The goal defaults to
// tautology when nil (useful in tests), state constraints likewise. Ground
// action ids must match their table position, a property the heuristics'
// deterministic tie-breaking relies on.
func NewProblem(info *ProblemInfo, init []Atom, goal, constraints Formula, ground []*GroundAction, lifted []*LiftedAction) (*Problem, error) {
	if goal == nil {
		goal = Truth()
	}
	if constraints == nil {
		constraints = Truth()
	}
	indexer := NewStateAtomIndexer(info)
	s0, err := NewState(info, indexer, init)
	if err != nil {
		return nil, err
	}
	for i, a := range ground {
		if int(a.ID) != i {
			return nil, fmt.Errorf("%w: ground action %q has id %d at table position %d",
				ErrInconsistentProblem, a.Name, a.ID, i)
		}
	}
	for i, a := range lifted {
		if int(a.ID) != i {
			return nil, fmt.Errorf("%w: lifted action %q has id %d at table position %d",
				ErrInconsistentProblem, a.Name, a.ID, i)
		}
	}
	return &Problem{
		Info:             info,
		Atoms:            NewAtomIndex(info),
		Indexer:          indexer,
		Init:             s0,
		Goal:             goal,
		StateConstraints: constraints,
		Ground:           ground,
		Lifted:           lifted,
	}, nil
}

// GoalSatisfied reports whether the goal formula holds in s.
func (p *Problem) GoalSatisfied(s *State) (bool, error) {
	return p.Goal.Interpret(s, nil)
}
