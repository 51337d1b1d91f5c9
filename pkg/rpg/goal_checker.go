package rpg

import (
	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// PruneResult is the outcome of a state-constraint pruning pass over the
// reachable sets.
type PruneResult int

// Pruning outcomes.
const (
	// PruneNone means the pruner removed nothing.
	PruneNone PruneResult = iota
	// PrunePruned means some values were removed but the sets stay
	// consistent.
	PrunePruned
	// PruneFailure means the constraints are unsatisfiable over the
	// current sets; the evaluation reports Unreachable.
	PruneFailure
)

// ConstraintPruner is a hook invoked after each layer's novel atoms are
// absorbed, meant for constraint-based pruning of the reachable sets. The
// default is a no-op; constraint propagation over relaxed sets is a later
// extension point, not implemented here.
type ConstraintPruner interface {
	Prune(r *RelaxedState) (PruneResult, error)
}

// NoopPruner is the default ConstraintPruner.
type NoopPruner struct{}

// Prune never removes anything.
func (NoopPruner) Prune(*RelaxedState) (PruneResult, error) { return PruneNone, nil }

// GoalChecker decides goal satisfaction against full states and goal
// satisfiability against relaxed states. The relaxed check returns the set
// of witness atoms ("causes"), one per satisfied leaf constraint, which
// seed the backward relaxed-plan extraction. The goal formula is checked
// conjointly with the problem's state constraints.
type GoalChecker struct {
	formula fstrips.Formula
	atoms   *fstrips.AtomIndex
}

// NewGoalChecker builds a checker for goal ∧ stateConstraints.
func NewGoalChecker(goal, stateConstraints fstrips.Formula, atoms *fstrips.AtomIndex) *GoalChecker {
	f := goal
	if stateConstraints != nil {
		if _, trivial := stateConstraints.(*fstrips.Tautology); !trivial {
			f = fstrips.And(goal, stateConstraints)
		}
	}
	return &GoalChecker{formula: f, atoms: atoms}
}

// SatisfiedState reports whether the goal holds in a full state.
func (gc *GoalChecker) SatisfiedState(s *fstrips.State) (bool, error) {
	return gc.formula.Interpret(s, nil)
}

// Satisfiable reports whether the goal is satisfiable against the relaxed
// state, and on success returns the dense indices of the witnessing atoms.
func (gc *GoalChecker) Satisfiable(r *RelaxedState, sel ValueSelector) ([]fstrips.AtomIdx, bool, error) {
	wit, ok, err := SatisfiableRelaxed(gc.formula, r, sel)
	if err != nil || !ok {
		return nil, false, err
	}
	return witnessIndices(gc.atoms, wit), true, nil
}
