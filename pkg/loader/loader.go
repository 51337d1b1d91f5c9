// Package loader reads planning problems from YAML descriptions and
// produces the immutable fstrips.Problem the core consumes: symbol and
// object tables, ground state variables, the initial state, goal and
// state-constraint formulas, and a ground action table obtained by trivial
// enumeration of each schema's parameters over their types.
package loader

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

func sortedNames(objects map[string]string) []string {
	names := make([]string, 0, len(objects))
	for name := range objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// problemSpec is the YAML document root.
type problemSpec struct {
	Name        string            `yaml:"name"`
	Types       []string          `yaml:"types"`
	Objects     map[string]string `yaml:"objects"`
	Symbols     []symbolSpec      `yaml:"symbols"`
	Statics     []staticSpec      `yaml:"statics"`
	Init        []atomSpec        `yaml:"init"`
	Goal        *formulaSpec      `yaml:"goal"`
	Constraints *formulaSpec      `yaml:"constraints"`
	Actions     []actionSpec      `yaml:"actions"`
}

type symbolSpec struct {
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args"`
	Value  string   `yaml:"value"` // a type name, or "bool" for predicates
	Static bool     `yaml:"static"`
}

type staticSpec struct {
	Symbol string      `yaml:"symbol"`
	Tuples []tupleSpec `yaml:"tuples"`
}

type tupleSpec struct {
	Args  []string `yaml:"args"`
	Value string   `yaml:"value"` // object name; defaults to "true"
}

type atomSpec struct {
	Var   string   `yaml:"var"`
	Args  []string `yaml:"args"`
	Value string   `yaml:"value"` // object name; defaults to "true"
}

type termSpec struct {
	Obj    string     `yaml:"obj,omitempty"`
	Param  string     `yaml:"param,omitempty"`
	Fluent string     `yaml:"fluent,omitempty"`
	Static string     `yaml:"static,omitempty"`
	Args   []termSpec `yaml:"args,omitempty"`
}

type pairSpec struct {
	LHS termSpec `yaml:"lhs"`
	RHS termSpec `yaml:"rhs"`
}

type formulaSpec struct {
	Tautology *bool         `yaml:"tautology,omitempty"`
	And       []formulaSpec `yaml:"and,omitempty"`
	Or        []formulaSpec `yaml:"or,omitempty"`
	Not       *formulaSpec  `yaml:"not,omitempty"`
	Eq        *pairSpec     `yaml:"eq,omitempty"`
	Neq       *pairSpec     `yaml:"neq,omitempty"`
	Lt        *pairSpec     `yaml:"lt,omitempty"`
	Leq       *pairSpec     `yaml:"leq,omitempty"`
	Gt        *pairSpec     `yaml:"gt,omitempty"`
	Geq       *pairSpec     `yaml:"geq,omitempty"`
}

type paramSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type effectSpec struct {
	When *formulaSpec `yaml:"when,omitempty"`
	Set  termSpec     `yaml:"set"`
	To   termSpec     `yaml:"to"`
}

type actionSpec struct {
	Name    string       `yaml:"name"`
	Params  []paramSpec  `yaml:"params"`
	Pre     *formulaSpec `yaml:"pre"`
	Effects []effectSpec `yaml:"effects"`
	Cost    int          `yaml:"cost"`
}

// LoadFile reads a problem description from a YAML file.
func LoadFile(path string) (*fstrips.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return Load(data)
}

// Load builds a problem from YAML bytes.
func Load(data []byte) (*fstrips.Problem, error) {
	var spec problemSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return build(&spec)
}

// env carries the name-to-id tables accumulated while building.
type env struct {
	info    *fstrips.ProblemInfo
	types   map[string]fstrips.TypeIdx
	objects map[string]fstrips.ObjectIdx
}

func build(spec *problemSpec) (*fstrips.Problem, error) {
	b := fstrips.NewBuilder()
	e := &env{
		types:   map[string]fstrips.TypeIdx{"bool": fstrips.TypeBool},
		objects: map[string]fstrips.ObjectIdx{"false": fstrips.ObjectFalse, "true": fstrips.ObjectTrue},
	}
	for _, t := range spec.Types {
		e.types[t] = b.AddType(t)
	}
	// Object ids follow sorted name order so that identical descriptions
	// always produce identical tables.
	for _, name := range sortedNames(spec.Objects) {
		t, ok := e.types[spec.Objects[name]]
		if !ok {
			return nil, fmt.Errorf("loader: object %q has unknown type %q", name, spec.Objects[name])
		}
		e.objects[name] = b.AddObject(name, t)
	}
	for _, s := range spec.Symbols {
		sig := make([]fstrips.TypeIdx, len(s.Args))
		for i, a := range s.Args {
			t, ok := e.types[a]
			if !ok {
				return nil, fmt.Errorf("loader: symbol %q has unknown argument type %q", s.Name, a)
			}
			sig[i] = t
		}
		vt, ok := e.types[s.Value]
		if !ok {
			return nil, fmt.Errorf("loader: symbol %q has unknown value type %q", s.Name, s.Value)
		}
		if s.Static {
			b.AddStaticSymbol(s.Name, sig, vt)
		} else {
			b.AddFluentSymbol(s.Name, sig, vt)
		}
	}
	info, err := buildTables(b, spec, e)
	if err != nil {
		return nil, err
	}
	e.info = info

	init, err := e.initAtoms(spec.Init)
	if err != nil {
		return nil, err
	}
	goal, err := e.formula(spec.Goal, nil)
	if err != nil {
		return nil, err
	}
	constraints, err := e.formula(spec.Constraints, nil)
	if err != nil {
		return nil, err
	}
	ground, err := e.groundActions(spec.Actions)
	if err != nil {
		return nil, err
	}
	return fstrips.NewProblem(info, init, goal, constraints, ground, nil)
}

func buildTables(b *fstrips.Builder, spec *problemSpec, e *env) (*fstrips.ProblemInfo, error) {
	for _, st := range spec.Statics {
		// Symbol ids are assigned in declaration order; extensions must be
		// added through the builder, so resolve positionally here.
		idx := -1
		for i, s := range spec.Symbols {
			if s.Name == st.Symbol {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("loader: static extension for unknown symbol %q", st.Symbol)
		}
		for _, tup := range st.Tuples {
			args := make([]fstrips.ObjectIdx, len(tup.Args))
			for i, a := range tup.Args {
				o, ok := e.objects[a]
				if !ok {
					return nil, fmt.Errorf("loader: static %q references unknown object %q", st.Symbol, a)
				}
				args[i] = o
			}
			value := fstrips.ObjectTrue
			if tup.Value != "" {
				o, ok := e.objects[tup.Value]
				if !ok {
					return nil, fmt.Errorf("loader: static %q has unknown value %q", st.Symbol, tup.Value)
				}
				value = o
			}
			b.AddStaticTuple(fstrips.SymbolIdx(idx), args, value)
		}
	}
	b.GroundAllVariables()
	return b.Build()
}

func (e *env) initAtoms(specs []atomSpec) ([]fstrips.Atom, error) {
	out := make([]fstrips.Atom, 0, len(specs))
	for _, a := range specs {
		sym, ok := e.info.SymbolID(a.Var)
		if !ok {
			return nil, fmt.Errorf("loader: init references unknown symbol %q", a.Var)
		}
		args := make([]fstrips.ObjectIdx, len(a.Args))
		for i, arg := range a.Args {
			o, ok := e.objects[arg]
			if !ok {
				return nil, fmt.Errorf("loader: init references unknown object %q", arg)
			}
			args[i] = o
		}
		v, ok := e.info.VariableID(sym, args...)
		if !ok {
			return nil, fmt.Errorf("loader: no state variable %s%v", a.Var, a.Args)
		}
		value := fstrips.ObjectTrue
		if a.Value != "" {
			o, ok := e.objects[a.Value]
			if !ok {
				return nil, fmt.Errorf("loader: init value %q is not an object", a.Value)
			}
			value = o
		}
		out = append(out, fstrips.Atom{Variable: v, Value: value})
	}
	return out, nil
}

// formula translates a formula spec; binding maps parameter names to
// constants during grounding.
func (e *env) formula(f *formulaSpec, binding map[string]fstrips.ObjectIdx) (fstrips.Formula, error) {
	if f == nil {
		return fstrips.Truth(), nil
	}
	switch {
	case f.Tautology != nil:
		if *f.Tautology {
			return fstrips.Truth(), nil
		}
		return fstrips.Falsity(), nil
	case f.And != nil:
		subs, err := e.formulaList(f.And, binding)
		if err != nil {
			return nil, err
		}
		return fstrips.And(subs...), nil
	case f.Or != nil:
		subs, err := e.formulaList(f.Or, binding)
		if err != nil {
			return nil, err
		}
		return fstrips.Or(subs...), nil
	case f.Not != nil:
		sub, err := e.formula(f.Not, binding)
		if err != nil {
			return nil, err
		}
		return fstrips.Not(sub), nil
	case f.Eq != nil:
		return e.relational(fstrips.RelEQ, f.Eq, binding)
	case f.Neq != nil:
		return e.relational(fstrips.RelNEQ, f.Neq, binding)
	case f.Lt != nil:
		return e.relational(fstrips.RelLT, f.Lt, binding)
	case f.Leq != nil:
		return e.relational(fstrips.RelLEQ, f.Leq, binding)
	case f.Gt != nil:
		return e.relational(fstrips.RelGT, f.Gt, binding)
	case f.Geq != nil:
		return e.relational(fstrips.RelGEQ, f.Geq, binding)
	default:
		return nil, fmt.Errorf("loader: empty formula node")
	}
}

func (e *env) formulaList(specs []formulaSpec, binding map[string]fstrips.ObjectIdx) ([]fstrips.Formula, error) {
	out := make([]fstrips.Formula, len(specs))
	for i := range specs {
		f, err := e.formula(&specs[i], binding)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (e *env) relational(op fstrips.RelOp, p *pairSpec, binding map[string]fstrips.ObjectIdx) (fstrips.Formula, error) {
	lhs, err := e.term(&p.LHS, binding)
	if err != nil {
		return nil, err
	}
	rhs, err := e.term(&p.RHS, binding)
	if err != nil {
		return nil, err
	}
	return fstrips.NewRelational(op, lhs, rhs), nil
}

func (e *env) term(t *termSpec, binding map[string]fstrips.ObjectIdx) (fstrips.Term, error) {
	switch {
	case t.Obj != "":
		o, ok := e.objects[t.Obj]
		if !ok {
			return nil, fmt.Errorf("loader: unknown object %q", t.Obj)
		}
		return fstrips.NewConstant(o), nil
	case t.Param != "":
		o, ok := binding[t.Param]
		if !ok {
			return nil, fmt.Errorf("loader: unbound parameter %q", t.Param)
		}
		return fstrips.NewConstant(o), nil
	case t.Fluent != "":
		sym, ok := e.info.SymbolID(t.Fluent)
		if !ok {
			return nil, fmt.Errorf("loader: unknown fluent symbol %q", t.Fluent)
		}
		subs, err := e.termList(t.Args, binding)
		if err != nil {
			return nil, err
		}
		return fstrips.NewFluentTerm(sym, subs...), nil
	case t.Static != "":
		sym, ok := e.info.SymbolID(t.Static)
		if !ok {
			return nil, fmt.Errorf("loader: unknown static symbol %q", t.Static)
		}
		subs, err := e.termList(t.Args, binding)
		if err != nil {
			return nil, err
		}
		return fstrips.NewStaticTerm(sym, subs...), nil
	default:
		return nil, fmt.Errorf("loader: empty term node")
	}
}

func (e *env) termList(specs []termSpec, binding map[string]fstrips.ObjectIdx) ([]fstrips.Term, error) {
	out := make([]fstrips.Term, len(specs))
	for i := range specs {
		t, err := e.term(&specs[i], binding)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// groundActions enumerates every schema's parameters over their types.
func (e *env) groundActions(specs []actionSpec) ([]*fstrips.GroundAction, error) {
	var out []*fstrips.GroundAction
	for i := range specs {
		spec := &specs[i]
		bindings, err := e.enumerate(spec.Params)
		if err != nil {
			return nil, err
		}
		for _, binding := range bindings {
			a, err := e.groundOne(spec, binding, fstrips.ActionIdx(len(out)))
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func (e *env) enumerate(params []paramSpec) ([]map[string]fstrips.ObjectIdx, error) {
	bindings := []map[string]fstrips.ObjectIdx{{}}
	for _, p := range params {
		t, ok := e.types[p.Type]
		if !ok {
			return nil, fmt.Errorf("loader: parameter %q has unknown type %q", p.Name, p.Type)
		}
		var next []map[string]fstrips.ObjectIdx
		for _, base := range bindings {
			for _, o := range e.info.TypeObjects(t) {
				m := make(map[string]fstrips.ObjectIdx, len(base)+1)
				for k, v := range base {
					m[k] = v
				}
				m[p.Name] = o
				next = append(next, m)
			}
		}
		bindings = next
	}
	return bindings, nil
}

func (e *env) groundOne(spec *actionSpec, binding map[string]fstrips.ObjectIdx, id fstrips.ActionIdx) (*fstrips.GroundAction, error) {
	pre, err := e.formula(spec.Pre, binding)
	if err != nil {
		return nil, err
	}
	effects := make([]fstrips.ActionEffect, len(spec.Effects))
	for i, eff := range spec.Effects {
		cond, err := e.formula(eff.When, binding)
		if err != nil {
			return nil, err
		}
		lhs, err := e.effectHead(&eff.Set, binding)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", spec.Name, err)
		}
		rhs, err := e.term(&eff.To, binding)
		if err != nil {
			return nil, err
		}
		effects[i] = fstrips.NewConditionalEffect(cond, lhs, rhs)
	}
	name := spec.Name
	for _, p := range spec.Params {
		name += " " + e.info.ObjectName(binding[p.Name])
	}
	a := fstrips.NewGroundAction(id, name, pre, effects...)
	if spec.Cost > 0 {
		a.Cost = spec.Cost
	}
	return a, nil
}

// effectHead resolves an effect's left-hand side to a concrete state
// variable; grounding has already substituted parameters, so the head's
// arguments must all be constants.
func (e *env) effectHead(t *termSpec, binding map[string]fstrips.ObjectIdx) (fstrips.Term, error) {
	if t.Fluent == "" {
		return nil, fmt.Errorf("loader: effect head must be a fluent application")
	}
	sym, ok := e.info.SymbolID(t.Fluent)
	if !ok {
		return nil, fmt.Errorf("loader: unknown fluent symbol %q", t.Fluent)
	}
	args := make([]fstrips.ObjectIdx, len(t.Args))
	for i := range t.Args {
		sub, err := e.term(&t.Args[i], binding)
		if err != nil {
			return nil, err
		}
		c, ok := sub.(*fstrips.Constant)
		if !ok {
			return nil, fmt.Errorf("loader: effect head argument %d is not ground", i)
		}
		args[i] = c.Value
	}
	v, ok := e.info.VariableID(sym, args...)
	if !ok {
		return nil, fmt.Errorf("loader: no state variable %s over %v", t.Fluent, args)
	}
	return fstrips.NewStateVariable(v), nil
}
