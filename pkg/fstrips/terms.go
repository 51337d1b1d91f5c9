package fstrips

import (
	"fmt"
	"strings"
)

// Term is a logical term of the language: a denotation of an object under a
// state and a binding. The set of implementations is closed; interpreters
// elsewhere dispatch on the concrete node types.
type Term interface {
	// Interpret returns the object the term denotes in the given state
	// under the given binding.
	Interpret(s *State, b *Binding) (ObjectIdx, error)

	String() string
}

// Constant denotes a fixed object.
type Constant struct {
	Value ObjectIdx
}

// NewConstant builds a constant term.
func NewConstant(v ObjectIdx) *Constant { return &Constant{Value: v} }

func (c *Constant) Interpret(*State, *Binding) (ObjectIdx, error) { return c.Value, nil }

func (c *Constant) String() string { return fmt.Sprintf("c%d", c.Value) }

// BoundVariable denotes a quantified or action-parameter variable, resolved
// through the binding at interpretation time.
type BoundVariable struct {
	ID   int
	Type TypeIdx
	Name string
}

// NewBoundVariable builds a bound variable term.
func NewBoundVariable(id int, t TypeIdx, name string) *BoundVariable {
	return &BoundVariable{ID: id, Type: t, Name: name}
}

func (v *BoundVariable) Interpret(_ *State, b *Binding) (ObjectIdx, error) {
	val, ok := b.Value(v.ID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, v.Name)
	}
	return val, nil
}

func (v *BoundVariable) String() string {
	if v.Name != "" {
		return "?" + v.Name
	}
	return fmt.Sprintf("?%d", v.ID)
}

// StateVariable denotes a ground state variable such as loc(truck1); its
// interpretation is the variable's current value.
type StateVariable struct {
	Variable VariableIdx
}

// NewStateVariable builds a state-variable term.
func NewStateVariable(v VariableIdx) *StateVariable { return &StateVariable{Variable: v} }

func (t *StateVariable) Interpret(s *State, _ *Binding) (ObjectIdx, error) {
	return s.Value(t.Variable), nil
}

func (t *StateVariable) String() string { return fmt.Sprintf("x%d", t.Variable) }

// FluentTerm is a nested term headed by a fluent symbol, f(t1, ..., tn).
// Interpreting the subterms resolves it to a concrete state variable, whose
// value is then read from the state.
type FluentTerm struct {
	Symbol   SymbolIdx
	Subterms []Term
}

// NewFluentTerm builds a fluent-headed nested term.
func NewFluentTerm(s SymbolIdx, subterms ...Term) *FluentTerm {
	return &FluentTerm{Symbol: s, Subterms: subterms}
}

// ResolveVariable interprets the subterms and returns the state variable
// the term refers to.
func (t *FluentTerm) ResolveVariable(s *State, b *Binding) (VariableIdx, error) {
	args := make([]ObjectIdx, len(t.Subterms))
	for i, sub := range t.Subterms {
		v, err := sub.Interpret(s, b)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	v, ok := s.Info().VariableID(t.Symbol, args...)
	if !ok {
		return 0, fmt.Errorf("%w: no state variable for %s over %v",
			ErrUnknownSymbol, s.Info().Symbol(t.Symbol).Name, args)
	}
	return v, nil
}

func (t *FluentTerm) Interpret(s *State, b *Binding) (ObjectIdx, error) {
	v, err := t.ResolveVariable(s, b)
	if err != nil {
		return 0, err
	}
	return s.Value(v), nil
}

func (t *FluentTerm) String() string { return nestedString("f", int(t.Symbol), t.Subterms) }

// StaticTerm is a nested term headed by a static symbol; its value comes
// from the fixed extension in the problem description. Undefined tuples of
// static predicates read as false; undefined tuples of static functions are
// an interpretation error.
type StaticTerm struct {
	Symbol   SymbolIdx
	Subterms []Term
}

// NewStaticTerm builds a static-headed nested term.
func NewStaticTerm(s SymbolIdx, subterms ...Term) *StaticTerm {
	return &StaticTerm{Symbol: s, Subterms: subterms}
}

func (t *StaticTerm) Interpret(s *State, b *Binding) (ObjectIdx, error) {
	args := make([]ObjectIdx, len(t.Subterms))
	for i, sub := range t.Subterms {
		v, err := sub.Interpret(s, b)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return t.lookup(s.Info(), args)
}

func (t *StaticTerm) lookup(info *ProblemInfo, args []ObjectIdx) (ObjectIdx, error) {
	if v, ok := info.StaticValue(t.Symbol, args); ok {
		return v, nil
	}
	if info.Symbol(t.Symbol).ValueType == TypeBool {
		return ObjectFalse, nil
	}
	return 0, fmt.Errorf("%w: static %s undefined over %v",
		ErrUnknownSymbol, info.Symbol(t.Symbol).Name, args)
}

func (t *StaticTerm) String() string { return nestedString("s", int(t.Symbol), t.Subterms) }

// ArithOp enumerates the built-in arithmetic combinators.
type ArithOp int

// Arithmetic operators.
const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "*"
	}
}

// ArithmeticTerm combines two subterms with an integer arithmetic operator.
// Object ids double as integers here, as in bounded-integer planning
// domains; the result need not name a declared object until it is assigned
// to a state variable.
type ArithmeticTerm struct {
	Op  ArithOp
	LHS Term
	RHS Term
}

// NewArithmeticTerm builds an arithmetic term.
func NewArithmeticTerm(op ArithOp, lhs, rhs Term) *ArithmeticTerm {
	return &ArithmeticTerm{Op: op, LHS: lhs, RHS: rhs}
}

func (t *ArithmeticTerm) Interpret(s *State, b *Binding) (ObjectIdx, error) {
	l, err := t.LHS.Interpret(s, b)
	if err != nil {
		return 0, err
	}
	r, err := t.RHS.Interpret(s, b)
	if err != nil {
		return 0, err
	}
	return t.apply(l, r), nil
}

func (t *ArithmeticTerm) apply(l, r ObjectIdx) ObjectIdx {
	switch t.Op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	default:
		return l * r
	}
}

func (t *ArithmeticTerm) String() string {
	return fmt.Sprintf("(%s %s %s)", t.LHS, t.Op, t.RHS)
}

func nestedString(kind string, symbol int, subterms []Term) string {
	parts := make([]string, len(subterms))
	for i, t := range subterms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s%d(%s)", kind, symbol, strings.Join(parts, ", "))
}
