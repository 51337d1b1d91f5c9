package rpg

import (
	"fmt"
	"sort"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// ValueSelector orders the candidate witness values considered for a state
// variable during relaxed satisfaction. The default (nil) keeps the
// ascending value order of the reachable set; the min-h_max selector
// prefers values whose atoms entered the graph early.
type ValueSelector func(v fstrips.VariableIdx, values []fstrips.ObjectIdx) []fstrips.ObjectIdx

// minHMaxSelector orders candidate values by the layer at which their atom
// was first achieved, ties broken by atom index so the choice stays
// deterministic.
func minHMaxSelector(g *RPGData, atoms *fstrips.AtomIndex) ValueSelector {
	return func(v fstrips.VariableIdx, values []fstrips.ObjectIdx) []fstrips.ObjectIdx {
		out := append([]fstrips.ObjectIdx(nil), values...)
		sort.SliceStable(out, func(i, j int) bool {
			ai := atoms.MustIndex(fstrips.Atom{Variable: v, Value: out[i]})
			aj := atoms.MustIndex(fstrips.Atom{Variable: v, Value: out[j]})
			li, lj := g.Layer(ai), g.Layer(aj)
			if li != lj {
				return li < lj
			}
			return ai < aj
		})
		return out
	}
}

// candidate is one possible value of a term under a relaxed state, together
// with the reachable atoms that witness it.
type candidate struct {
	value   fstrips.ObjectIdx
	witness []fstrips.Atom
}

// evalTermRelaxed returns every value a term can denote when each state
// variable it mentions may independently take any reachable value. The
// candidate order follows the selector, and duplicated values keep their
// first (preferred) witness.
func evalTermRelaxed(t fstrips.Term, r *RelaxedState, b *fstrips.Binding, sel ValueSelector) ([]candidate, error) {
	switch t := t.(type) {
	case *fstrips.Constant:
		return []candidate{{value: t.Value}}, nil

	case *fstrips.BoundVariable:
		v, ok := b.Value(t.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", fstrips.ErrUnboundVariable, t.Name)
		}
		return []candidate{{value: v}}, nil

	case *fstrips.StateVariable:
		return variableCandidates(t.Variable, nil, r, sel), nil

	case *fstrips.FluentTerm:
		subs, err := evalSubterms(t.Subterms, r, b, sel)
		if err != nil {
			return nil, err
		}
		var out []candidate
		err = eachCombination(subs, func(args []fstrips.ObjectIdx, wit []fstrips.Atom) error {
			v, ok := r.Info().VariableID(t.Symbol, args...)
			if !ok {
				return nil // no state variable over these arguments
			}
			out = appendCandidates(out, variableCandidates(v, wit, r, sel))
			return nil
		})
		return out, err

	case *fstrips.StaticTerm:
		subs, err := evalSubterms(t.Subterms, r, b, sel)
		if err != nil {
			return nil, err
		}
		predicative := r.Info().Symbol(t.Symbol).ValueType == fstrips.TypeBool
		var out []candidate
		err = eachCombination(subs, func(args []fstrips.ObjectIdx, wit []fstrips.Atom) error {
			val, ok := r.Info().StaticValue(t.Symbol, args)
			if !ok {
				if !predicative {
					return nil // undefined tuple, no denotation
				}
				val = fstrips.ObjectFalse
			}
			out = appendCandidates(out, []candidate{{value: val, witness: wit}})
			return nil
		})
		return out, err

	case *fstrips.ArithmeticTerm:
		lhs, err := evalTermRelaxed(t.LHS, r, b, sel)
		if err != nil {
			return nil, err
		}
		rhs, err := evalTermRelaxed(t.RHS, r, b, sel)
		if err != nil {
			return nil, err
		}
		var out []candidate
		for _, l := range lhs {
			for _, rr := range rhs {
				var v fstrips.ObjectIdx
				switch t.Op {
				case fstrips.OpAdd:
					v = l.value + rr.value
				case fstrips.OpSub:
					v = l.value - rr.value
				default:
					v = l.value * rr.value
				}
				out = appendCandidates(out, []candidate{{value: v, witness: mergeWitness(l.witness, rr.witness)}})
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("rpg: unsupported term node %T", t)
	}
}

func variableCandidates(v fstrips.VariableIdx, baseWitness []fstrips.Atom, r *RelaxedState, sel ValueSelector) []candidate {
	values := r.Reachable(v)
	if sel != nil {
		values = sel(v, values)
	}
	out := make([]candidate, 0, len(values))
	for _, val := range values {
		wit := append(append([]fstrips.Atom(nil), baseWitness...), fstrips.Atom{Variable: v, Value: val})
		out = append(out, candidate{value: val, witness: wit})
	}
	return out
}

func evalSubterms(terms []fstrips.Term, r *RelaxedState, b *fstrips.Binding, sel ValueSelector) ([][]candidate, error) {
	out := make([][]candidate, len(terms))
	for i, t := range terms {
		cs, err := evalTermRelaxed(t, r, b, sel)
		if err != nil {
			return nil, err
		}
		out[i] = cs
	}
	return out, nil
}

// eachCombination enumerates the cartesian product of per-subterm
// candidates, invoking f with the chosen values and merged witnesses.
func eachCombination(subs [][]candidate, f func(args []fstrips.ObjectIdx, wit []fstrips.Atom) error) error {
	args := make([]fstrips.ObjectIdx, len(subs))
	var rec func(i int, wit []fstrips.Atom) error
	rec = func(i int, wit []fstrips.Atom) error {
		if i == len(subs) {
			return f(args, wit)
		}
		for _, c := range subs[i] {
			args[i] = c.value
			if err := rec(i+1, mergeWitness(wit, c.witness)); err != nil {
				return err
			}
		}
		return nil
	}
	return rec(0, nil)
}

// appendCandidates merges new candidates into out, keeping the first
// witness seen for each distinct value.
func appendCandidates(out []candidate, add []candidate) []candidate {
	for _, c := range add {
		dup := false
		for _, have := range out {
			if have.value == c.value {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

func mergeWitness(a, b []fstrips.Atom) []fstrips.Atom {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	return append(append([]fstrips.Atom(nil), a...), b...)
}

func negateRelOp(op fstrips.RelOp) fstrips.RelOp {
	switch op {
	case fstrips.RelEQ:
		return fstrips.RelNEQ
	case fstrips.RelNEQ:
		return fstrips.RelEQ
	case fstrips.RelLT:
		return fstrips.RelGEQ
	case fstrips.RelLEQ:
		return fstrips.RelGT
	case fstrips.RelGT:
		return fstrips.RelLEQ
	default:
		return fstrips.RelLT
	}
}

// satisfiedRelaxed decides whether a formula is satisfiable when every
// state-variable occurrence may independently be witnessed by any value in
// the reachable set, per the existential semantics of delete relaxation.
// On success it returns the witnessing atoms of the formula's leaves.
// The negated flag interprets the formula under an enclosing negation,
// pushing it inward to the relational leaves.
func satisfiedRelaxed(f fstrips.Formula, r *RelaxedState, b *fstrips.Binding, sel ValueSelector, negated bool) (bool, []fstrips.Atom, error) {
	switch f := f.(type) {
	case *fstrips.Tautology:
		return !negated, nil, nil

	case *fstrips.Contradiction:
		return negated, nil, nil

	case *fstrips.RelationalFormula:
		op := f.Op
		if negated {
			op = negateRelOp(op)
		}
		lhs, err := evalTermRelaxed(f.LHS, r, b, sel)
		if err != nil {
			return false, nil, err
		}
		rhs, err := evalTermRelaxed(f.RHS, r, b, sel)
		if err != nil {
			return false, nil, err
		}
		for _, l := range lhs {
			for _, rr := range rhs {
				if op.Holds(l.value, rr.value) {
					return true, mergeWitness(l.witness, rr.witness), nil
				}
			}
		}
		return false, nil, nil

	case *fstrips.Conjunction:
		if negated {
			return anySatisfied(f.Subformulae, r, b, sel, true)
		}
		return allSatisfied(f.Subformulae, r, b, sel, false)

	case *fstrips.Disjunction:
		if negated {
			return allSatisfied(f.Subformulae, r, b, sel, true)
		}
		return anySatisfied(f.Subformulae, r, b, sel, false)

	case *fstrips.Negation:
		return satisfiedRelaxed(f.Inner, r, b, sel, !negated)

	case *fstrips.ExistentialFormula:
		if negated {
			return allBindings(f.Variables, f.Inner, r, b, sel, true)
		}
		return anyBinding(f.Variables, f.Inner, r, b, sel, false)

	case *fstrips.UniversalFormula:
		if negated {
			return anyBinding(f.Variables, f.Inner, r, b, sel, true)
		}
		return allBindings(f.Variables, f.Inner, r, b, sel, false)

	default:
		return false, nil, fmt.Errorf("rpg: unsupported formula node %T", f)
	}
}

func allSatisfied(subs []fstrips.Formula, r *RelaxedState, b *fstrips.Binding, sel ValueSelector, negated bool) (bool, []fstrips.Atom, error) {
	var wit []fstrips.Atom
	for _, sub := range subs {
		ok, w, err := satisfiedRelaxed(sub, r, b, sel, negated)
		if err != nil || !ok {
			return false, nil, err
		}
		wit = mergeWitness(wit, w)
	}
	return true, wit, nil
}

func anySatisfied(subs []fstrips.Formula, r *RelaxedState, b *fstrips.Binding, sel ValueSelector, negated bool) (bool, []fstrips.Atom, error) {
	for _, sub := range subs {
		ok, w, err := satisfiedRelaxed(sub, r, b, sel, negated)
		if err != nil {
			return false, nil, err
		}
		if ok {
			return true, w, nil
		}
	}
	return false, nil, nil
}

func anyBinding(vars []*fstrips.BoundVariable, inner fstrips.Formula, r *RelaxedState, b *fstrips.Binding, sel ValueSelector, negated bool) (bool, []fstrips.Atom, error) {
	if b == nil {
		b = fstrips.NewBinding(0)
	}
	if len(vars) == 0 {
		return satisfiedRelaxed(inner, r, b, sel, negated)
	}
	v, rest := vars[0], vars[1:]
	for _, o := range r.Info().TypeObjects(v.Type) {
		b.Set(v.ID, o)
		ok, w, err := anyBinding(rest, inner, r, b, sel, negated)
		if err != nil || ok {
			b.Unset(v.ID)
			return ok, w, err
		}
	}
	b.Unset(v.ID)
	return false, nil, nil
}

func allBindings(vars []*fstrips.BoundVariable, inner fstrips.Formula, r *RelaxedState, b *fstrips.Binding, sel ValueSelector, negated bool) (bool, []fstrips.Atom, error) {
	if b == nil {
		b = fstrips.NewBinding(0)
	}
	if len(vars) == 0 {
		return satisfiedRelaxed(inner, r, b, sel, negated)
	}
	v, rest := vars[0], vars[1:]
	var wit []fstrips.Atom
	for _, o := range r.Info().TypeObjects(v.Type) {
		b.Set(v.ID, o)
		ok, w, err := allBindings(rest, inner, r, b, sel, negated)
		if err != nil || !ok {
			b.Unset(v.ID)
			return false, nil, err
		}
		wit = mergeWitness(wit, w)
	}
	b.Unset(v.ID)
	return true, wit, nil
}

// SatisfiableRelaxed is the exported entry point: it decides relaxed
// satisfiability of a closed formula and returns the witnessing atoms.
func SatisfiableRelaxed(f fstrips.Formula, r *RelaxedState, sel ValueSelector) ([]fstrips.Atom, bool, error) {
	ok, wit, err := satisfiedRelaxed(f, r, nil, sel, false)
	if err != nil || !ok {
		return nil, false, err
	}
	return wit, true, nil
}
