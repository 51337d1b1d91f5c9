package fstrips

import (
	"fmt"
	"strings"
)

// ActionEffect is one conditional effect of an action: when Condition holds,
// the state variable denoted by LHS is assigned the value of RHS. LHS must
// be a *StateVariable for ground actions, or a *FluentTerm whose subterms
// mention action parameters for lifted ones.
type ActionEffect struct {
	Condition Formula
	LHS       Term
	RHS       Term
}

// NewEffect builds an unconditional effect.
func NewEffect(lhs, rhs Term) ActionEffect {
	return ActionEffect{Condition: Truth(), LHS: lhs, RHS: rhs}
}

// NewConditionalEffect builds a conditional effect.
func NewConditionalEffect(condition Formula, lhs, rhs Term) ActionEffect {
	return ActionEffect{Condition: condition, LHS: lhs, RHS: rhs}
}

func (e ActionEffect) String() string {
	if _, ok := e.Condition.(*Tautology); ok {
		return fmt.Sprintf("%s := %s", e.LHS, e.RHS)
	}
	return fmt.Sprintf("%s ? %s := %s", e.Condition, e.LHS, e.RHS)
}

// GroundAction is an action schema with every parameter replaced by a
// concrete object: a closed precondition formula plus a list of conditional
// effects. Ground actions are immutable and shared read-only across
// concurrent evaluations.
type GroundAction struct {
	ID           ActionIdx
	Name         string
	Precondition Formula
	Effects      []ActionEffect
	Cost         int
}

// NewGroundAction builds a ground action with unit cost.
func NewGroundAction(id ActionIdx, name string, precondition Formula, effects ...ActionEffect) *GroundAction {
	return &GroundAction{ID: id, Name: name, Precondition: precondition, Effects: effects, Cost: 1}
}

// Applicable reports whether the action's precondition holds in s.
func (a *GroundAction) Applicable(s *State) (bool, error) {
	return a.Precondition.Interpret(s, nil)
}

// Apply computes the changeset the action induces in s: one atom per effect
// whose condition holds. Values outside the affected variable's domain are
// rejected, which catches arithmetic running off a bounded-integer range.
func (a *GroundAction) Apply(s *State) ([]Atom, error) {
	var changes []Atom
	for _, eff := range a.Effects {
		ok, err := eff.Condition.Interpret(s, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := effectVariable(eff.LHS, s, nil)
		if err != nil {
			return nil, err
		}
		value, err := eff.RHS.Interpret(s, nil)
		if err != nil {
			return nil, err
		}
		if !s.Info().CheckValue(v, value) {
			return nil, fmt.Errorf("%w: action %q assigns %d outside the domain of %s",
				ErrInconsistentProblem, a.Name, value, s.Info().VariableName(v))
		}
		changes = append(changes, Atom{Variable: v, Value: value})
	}
	return changes, nil
}

func (a *GroundAction) String() string { return a.Name }

// effectVariable resolves the state variable an effect head denotes.
func effectVariable(lhs Term, s *State, b *Binding) (VariableIdx, error) {
	switch t := lhs.(type) {
	case *StateVariable:
		return t.Variable, nil
	case *FluentTerm:
		return t.ResolveVariable(s, b)
	default:
		return 0, fmt.Errorf("%w: effect head %s is not a state variable", ErrNotGround, lhs)
	}
}

// LiftedAction is a partially ground action schema: some parameters remain
// free, each declared as a BoundVariable ranging over its type. The
// atom-centric heuristic variant treats every effect of a lifted action as
// a constraint-satisfaction problem over the free parameters.
type LiftedAction struct {
	ID           ActionIdx
	Name         string
	Params       []*BoundVariable
	Precondition Formula
	Effects      []ActionEffect
	Cost         int
}

// NewLiftedAction builds a lifted action with unit cost.
func NewLiftedAction(id ActionIdx, name string, params []*BoundVariable, precondition Formula, effects ...ActionEffect) *LiftedAction {
	return &LiftedAction{ID: id, Name: name, Params: params, Precondition: precondition, Effects: effects, Cost: 1}
}

func (a *LiftedAction) String() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(parts, ", "))
}
