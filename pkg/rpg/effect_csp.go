package rpg

import (
	"fmt"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// EffectHandler wraps a single effect of a partially ground action as a
// constraint-satisfaction problem over the action's free parameters. The
// atom-centric expansion strategy asks each handler two questions per
// layer: is the CSP consistent against the current reachable sets at all
// (Preinstantiate), and can it be solved so that it produces one specific
// atom (FindSupport).
//
// Handlers are immutable and shared; the instantiated CSPs they hand out
// are owned by the layer that requested them and must not outlive it.
type EffectHandler struct {
	action   *fstrips.LiftedAction
	effect   fstrips.ActionEffect
	atoms    *fstrips.AtomIndex
	affected []fstrips.VariableIdx
}

// EffectCSP is a handler's CSP instantiated against one layer's reachable
// sets: the per-parameter domains that survived propagation. It caches the
// instantiation work so the handler is instantiated at most once per layer.
type EffectCSP struct {
	domains [][]fstrips.ObjectIdx
}

// NewEffectHandler builds the handler for one effect of a lifted action.
// The affected-variable set is an over-approximation keyed on the effect
// head: a fixed state variable affects just itself, a fluent-headed term
// may affect any state variable of its symbol.
func NewEffectHandler(action *fstrips.LiftedAction, effectIdx int, info *fstrips.ProblemInfo, atoms *fstrips.AtomIndex) (*EffectHandler, error) {
	eff := action.Effects[effectIdx]
	var affected []fstrips.VariableIdx
	switch lhs := eff.LHS.(type) {
	case *fstrips.StateVariable:
		affected = []fstrips.VariableIdx{lhs.Variable}
	case *fstrips.FluentTerm:
		affected = info.SymbolVariables(lhs.Symbol)
	default:
		return nil, fmt.Errorf("%w: effect head %s of action %q", fstrips.ErrNotGround, eff.LHS, action.Name)
	}
	return &EffectHandler{action: action, effect: eff, atoms: atoms, affected: affected}, nil
}

// Action returns the handler's action schema.
func (h *EffectHandler) Action() *fstrips.LiftedAction { return h.action }

// AffectedVariables returns the state variables the effect may touch.
func (h *EffectHandler) AffectedVariables() []fstrips.VariableIdx { return h.affected }

// applicable checks the handler's precondition conjoined with the effect's
// own condition under a parameter binding.
func (h *EffectHandler) applicable(r *RelaxedState, b *fstrips.Binding) (bool, []fstrips.Atom, error) {
	ok, preWit, err := satisfiedRelaxed(h.action.Precondition, r, b, nil, false)
	if err != nil || !ok {
		return false, nil, err
	}
	ok, condWit, err := satisfiedRelaxed(h.effect.Condition, r, b, nil, false)
	if err != nil || !ok {
		return false, nil, err
	}
	return true, mergeWitness(preWit, condWit), nil
}

// Preinstantiate builds the handler's CSP against the current reachable
// sets. Each parameter's domain is pruned to the values that take part in
// at least one applicable full assignment; an empty domain means the CSP
// is inconsistent for this layer and the second result is false.
func (h *EffectHandler) Preinstantiate(r *RelaxedState) (*EffectCSP, bool, error) {
	params := h.action.Params
	if len(params) == 0 {
		ok, _, err := h.applicable(r, fstrips.NewBinding(0))
		if err != nil || !ok {
			return nil, false, err
		}
		return &EffectCSP{}, true, nil
	}

	full := make([][]fstrips.ObjectIdx, len(params))
	for i, p := range params {
		full[i] = r.Info().TypeObjects(p.Type)
	}

	domains := make([][]fstrips.ObjectIdx, len(params))
	b := fstrips.NewBinding(maxParamID(params) + 1)
	for i := range params {
		for _, o := range full[i] {
			b.Set(params[i].ID, o)
			ok, err := h.anyAssignment(r, b, params, full, i)
			b.Unset(params[i].ID)
			if err != nil {
				return nil, false, err
			}
			if ok {
				domains[i] = append(domains[i], o)
			}
		}
		if len(domains[i]) == 0 {
			return nil, false, nil
		}
	}
	return &EffectCSP{domains: domains}, true, nil
}

// anyAssignment reports whether some assignment of the parameters other
// than the pinned one keeps the handler applicable.
func (h *EffectHandler) anyAssignment(r *RelaxedState, b *fstrips.Binding, params []*fstrips.BoundVariable, full [][]fstrips.ObjectIdx, pinned int) (bool, error) {
	var rec func(i int) (bool, error)
	rec = func(i int) (bool, error) {
		if i == len(params) {
			ok, _, err := h.applicable(r, b)
			return ok, err
		}
		if i == pinned {
			return rec(i + 1)
		}
		for _, o := range full[i] {
			b.Set(params[i].ID, o)
			ok, err := rec(i + 1)
			b.Unset(params[i].ID)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
	return rec(0)
}

// FindSupport solves the cached CSP for one specific atom: it searches the
// pruned domains, in ascending value order, for a parameter assignment
// under which the handler is applicable and the effect produces exactly
// the requested atom. On success it returns the support to record.
func (h *EffectHandler) FindSupport(atom fstrips.Atom, csp *EffectCSP, r *RelaxedState) (Support, bool, error) {
	params := h.action.Params
	b := fstrips.NewBinding(maxParamID(params) + 1)
	assignment := make([]fstrips.ObjectIdx, len(params))

	var rec func(i int) (Support, bool, error)
	rec = func(i int) (Support, bool, error) {
		if i < len(params) {
			for _, o := range csp.domains[i] {
				b.Set(params[i].ID, o)
				assignment[i] = o
				sup, ok, err := rec(i + 1)
				b.Unset(params[i].ID)
				if err != nil || ok {
					return sup, ok, err
				}
			}
			return Support{}, false, nil
		}

		ok, witness, err := h.applicable(r, b)
		if err != nil || !ok {
			return Support{}, false, err
		}
		headWit, matches, err := h.headMatches(atom.Variable, r, b)
		if err != nil || !matches {
			return Support{}, false, err
		}
		values, err := evalTermRelaxed(h.effect.RHS, r, b, nil)
		if err != nil {
			return Support{}, false, err
		}
		for _, c := range values {
			if c.value != atom.Value {
				continue
			}
			witness = mergeWitness(mergeWitness(witness, headWit), c.witness)
			return Support{
				Action:  h.action.ID,
				Params:  append([]fstrips.ObjectIdx(nil), assignment...),
				Witness: witnessIndices(h.atoms, witness),
			}, true, nil
		}
		return Support{}, false, nil
	}
	return rec(0)
}

// headMatches checks that the effect head denotes the given state variable
// under the binding, returning any witness atoms used to resolve it.
func (h *EffectHandler) headMatches(v fstrips.VariableIdx, r *RelaxedState, b *fstrips.Binding) ([]fstrips.Atom, bool, error) {
	switch lhs := h.effect.LHS.(type) {
	case *fstrips.StateVariable:
		return nil, lhs.Variable == v, nil
	case *fstrips.FluentTerm:
		subs, err := evalSubterms(lhs.Subterms, r, b, nil)
		if err != nil {
			return nil, false, err
		}
		var headWit []fstrips.Atom
		found := false
		err = eachCombination(subs, func(args []fstrips.ObjectIdx, wit []fstrips.Atom) error {
			if found {
				return nil
			}
			if rv, ok := r.Info().VariableID(lhs.Symbol, args...); ok && rv == v {
				headWit, found = wit, true
			}
			return nil
		})
		return headWit, found, err
	default:
		return nil, false, fmt.Errorf("%w: effect head %s", fstrips.ErrNotGround, h.effect.LHS)
	}
}

func maxParamID(params []*fstrips.BoundVariable) int {
	max := -1
	for _, p := range params {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}
