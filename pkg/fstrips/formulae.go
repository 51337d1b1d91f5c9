package fstrips

import (
	"fmt"
	"strings"
)

// Formula is a first-order condition over states. Like Term, the set of
// implementations is closed; relaxed interpretation in package rpg
// dispatches on the concrete node types.
type Formula interface {
	// Interpret evaluates the formula in the given state under the given
	// binding, following the standard inductive definition of truth.
	Interpret(s *State, b *Binding) (bool, error)

	String() string
}

// Tautology is the constant-true formula.
type Tautology struct{}

// Truth returns the constant-true formula.
func Truth() *Tautology { return &Tautology{} }

func (*Tautology) Interpret(*State, *Binding) (bool, error) { return true, nil }
func (*Tautology) String() string                           { return "true" }

// Contradiction is the constant-false formula.
type Contradiction struct{}

// Falsity returns the constant-false formula.
func Falsity() *Contradiction { return &Contradiction{} }

func (*Contradiction) Interpret(*State, *Binding) (bool, error) { return false, nil }
func (*Contradiction) String() string                           { return "false" }

// RelOp enumerates the built-in relational comparators.
type RelOp int

// Relational comparators.
const (
	RelEQ RelOp = iota
	RelNEQ
	RelLT
	RelLEQ
	RelGT
	RelGEQ
)

func (op RelOp) String() string {
	switch op {
	case RelEQ:
		return "="
	case RelNEQ:
		return "!="
	case RelLT:
		return "<"
	case RelLEQ:
		return "<="
	case RelGT:
		return ">"
	default:
		return ">="
	}
}

// Holds applies the comparator to two interpreted values.
func (op RelOp) Holds(l, r ObjectIdx) bool {
	switch op {
	case RelEQ:
		return l == r
	case RelNEQ:
		return l != r
	case RelLT:
		return l < r
	case RelLEQ:
		return l <= r
	case RelGT:
		return l > r
	default:
		return l >= r
	}
}

// RelationalFormula is an atomic formula comparing two terms. These are the
// leaves whose satisfaction under a relaxed state yields witness atoms.
type RelationalFormula struct {
	Op  RelOp
	LHS Term
	RHS Term
}

// NewRelational builds an atomic comparison formula.
func NewRelational(op RelOp, lhs, rhs Term) *RelationalFormula {
	return &RelationalFormula{Op: op, LHS: lhs, RHS: rhs}
}

// Eq is shorthand for an equality atom.
func Eq(lhs, rhs Term) *RelationalFormula { return NewRelational(RelEQ, lhs, rhs) }

// Neq is shorthand for a disequality atom.
func Neq(lhs, rhs Term) *RelationalFormula { return NewRelational(RelNEQ, lhs, rhs) }

func (f *RelationalFormula) Interpret(s *State, b *Binding) (bool, error) {
	l, err := f.LHS.Interpret(s, b)
	if err != nil {
		return false, err
	}
	r, err := f.RHS.Interpret(s, b)
	if err != nil {
		return false, err
	}
	return f.Op.Holds(l, r), nil
}

func (f *RelationalFormula) String() string {
	return fmt.Sprintf("(%s %s %s)", f.LHS, f.Op, f.RHS)
}

// Conjunction is the conjunction of its subformulae. An empty conjunction
// is true.
type Conjunction struct {
	Subformulae []Formula
}

// And builds a conjunction.
func And(subformulae ...Formula) *Conjunction { return &Conjunction{Subformulae: subformulae} }

func (f *Conjunction) Interpret(s *State, b *Binding) (bool, error) {
	for _, sub := range f.Subformulae {
		ok, err := sub.Interpret(s, b)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *Conjunction) String() string { return junctionString("and", f.Subformulae) }

// Disjunction is the disjunction of its subformulae. An empty disjunction
// is false.
type Disjunction struct {
	Subformulae []Formula
}

// Or builds a disjunction.
func Or(subformulae ...Formula) *Disjunction { return &Disjunction{Subformulae: subformulae} }

func (f *Disjunction) Interpret(s *State, b *Binding) (bool, error) {
	for _, sub := range f.Subformulae {
		ok, err := sub.Interpret(s, b)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (f *Disjunction) String() string { return junctionString("or", f.Subformulae) }

// Negation negates its subformula.
type Negation struct {
	Inner Formula
}

// Not builds a negation.
func Not(inner Formula) *Negation { return &Negation{Inner: inner} }

func (f *Negation) Interpret(s *State, b *Binding) (bool, error) {
	ok, err := f.Inner.Interpret(s, b)
	return !ok, err
}

func (f *Negation) String() string { return fmt.Sprintf("(not %s)", f.Inner) }

// ExistentialFormula is an existentially quantified subformula. The bound
// variables range over the objects of their declared types.
type ExistentialFormula struct {
	Variables []*BoundVariable
	Inner     Formula
}

// Exists builds an existential quantification.
func Exists(vars []*BoundVariable, inner Formula) *ExistentialFormula {
	return &ExistentialFormula{Variables: vars, Inner: inner}
}

func (f *ExistentialFormula) Interpret(s *State, b *Binding) (bool, error) {
	if b == nil {
		b = NewBinding(0)
	}
	return quantify(f.Variables, s, b, func() (bool, error) {
		return f.Inner.Interpret(s, b)
	})
}

func (f *ExistentialFormula) String() string { return quantifierString("exists", f.Variables, f.Inner) }

// UniversalFormula is a universally quantified subformula.
type UniversalFormula struct {
	Variables []*BoundVariable
	Inner     Formula
}

// Forall builds a universal quantification.
func Forall(vars []*BoundVariable, inner Formula) *UniversalFormula {
	return &UniversalFormula{Variables: vars, Inner: inner}
}

func (f *UniversalFormula) Interpret(s *State, b *Binding) (bool, error) {
	if b == nil {
		b = NewBinding(0)
	}
	ok, err := quantify(f.Variables, s, b, func() (bool, error) {
		sat, err := f.Inner.Interpret(s, b)
		return !sat, err // search for a counterexample
	})
	return !ok, err
}

func (f *UniversalFormula) String() string { return quantifierString("forall", f.Variables, f.Inner) }

// quantify enumerates all assignments of the quantified variables, calling
// eval under each; it returns true as soon as eval does. The binding is
// extended in place and restored before returning.
func quantify(vars []*BoundVariable, s *State, b *Binding, eval func() (bool, error)) (bool, error) {
	if len(vars) == 0 {
		return eval()
	}
	v, rest := vars[0], vars[1:]
	for _, o := range s.Info().TypeObjects(v.Type) {
		b.Set(v.ID, o)
		ok, err := quantify(rest, s, b, eval)
		if err != nil || ok {
			b.Unset(v.ID)
			return ok, err
		}
	}
	b.Unset(v.ID)
	return false, nil
}

func junctionString(op string, subformulae []Formula) string {
	parts := make([]string, len(subformulae))
	for i, f := range subformulae {
		parts[i] = f.String()
	}
	return fmt.Sprintf("(%s %s)", op, strings.Join(parts, " "))
}

func quantifierString(op string, vars []*BoundVariable, inner Formula) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.String()
	}
	return fmt.Sprintf("(%s (%s) %s)", op, strings.Join(parts, " "), inner)
}
