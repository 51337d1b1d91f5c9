package rpg

import (
	"fmt"
	"sort"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// ActionManager drives one ground action through the relaxed graph: it
// checks the action's precondition against the current reachable sets and,
// for each effect whose condition also holds, induces the affected atoms
// into the bookkeeping with a concrete support. Managers hold no mutable
// state and are shared read-only by concurrent evaluations.
type ActionManager struct {
	action *fstrips.GroundAction
	atoms  *fstrips.AtomIndex
}

// NewActionManager validates that every effect head of the action resolves
// to a fixed state variable, which is what grounding guarantees for the
// direct (action-centric) strategy.
func NewActionManager(a *fstrips.GroundAction, atoms *fstrips.AtomIndex) (*ActionManager, error) {
	for _, eff := range a.Effects {
		if _, ok := eff.LHS.(*fstrips.StateVariable); !ok {
			return nil, fmt.Errorf("%w: effect head %s of ground action %q", fstrips.ErrNotGround, eff.LHS, a.Name)
		}
	}
	return &ActionManager{action: a, atoms: atoms}, nil
}

// Action returns the managed ground action.
func (m *ActionManager) Action() *fstrips.GroundAction { return m.action }

// Process applies the action to the current graph layer. Under delete
// relaxation an assignment x := e adds the atom (x, e) while all previous
// values of x remain reachable; a conditional effect whose condition is
// unsatisfied contributes nothing; atoms achieved in earlier layers keep
// their original support.
func (m *ActionManager) Process(r *RelaxedState, g *RPGData) error {
	ok, preWitness, err := satisfiedRelaxed(m.action.Precondition, r, nil, nil, false)
	if err != nil || !ok {
		return err
	}
	for _, eff := range m.action.Effects {
		condOK, condWitness, err := satisfiedRelaxed(eff.Condition, r, nil, nil, false)
		if err != nil {
			return err
		}
		if !condOK {
			continue
		}
		lhs := eff.LHS.(*fstrips.StateVariable)
		values, err := evalTermRelaxed(eff.RHS, r, nil, nil)
		if err != nil {
			return err
		}
		for _, c := range values {
			atom := fstrips.Atom{Variable: lhs.Variable, Value: c.value}
			if !r.Info().CheckValue(atom.Variable, atom.Value) {
				continue // arithmetic ran outside the variable's domain
			}
			if r.Contains(atom) {
				continue
			}
			witness := mergeWitness(mergeWitness(preWitness, condWitness), c.witness)
			g.Add(atom, Support{Action: m.action.ID, Witness: m.witnessIndices(witness)})
		}
	}
	return nil
}

// witnessIndices converts witness atoms to sorted, deduplicated dense
// indices, the form stored in the bookkeeping.
func (m *ActionManager) witnessIndices(atoms []fstrips.Atom) []fstrips.AtomIdx {
	return witnessIndices(m.atoms, atoms)
}

func witnessIndices(index *fstrips.AtomIndex, atoms []fstrips.Atom) []fstrips.AtomIdx {
	out := make([]fstrips.AtomIdx, 0, len(atoms))
	for _, a := range atoms {
		if i, ok := index.Index(a); ok {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}
