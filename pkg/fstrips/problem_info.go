package fstrips

import (
	"fmt"
	"sort"
)

// TypeBool is the predeclared boolean type. Objects 0 and 1 (named "false"
// and "true") belong to it, and every predicate symbol has it as value type.
const TypeBool TypeIdx = 0

// Boolean object constants.
const (
	ObjectFalse ObjectIdx = 0
	ObjectTrue  ObjectIdx = 1
)

// keyArity is the maximum arity of a symbol application that can be packed
// into a single lookup key. Problems with wider signatures are rejected at
// construction time.
const keyArity = 3

// Symbol describes a function or predicate symbol. Predicates are modelled
// as functions into TypeBool. A static symbol has its extension fixed by the
// problem description; a fluent symbol gives rise to state variables.
type Symbol struct {
	Name      string
	Signature []TypeIdx
	ValueType TypeIdx
	Fluent    bool
}

// variableInfo is the per-state-variable record kept by ProblemInfo.
type variableInfo struct {
	name   string
	symbol SymbolIdx
	args   []ObjectIdx
}

// ProblemInfo is the immutable symbol and object index of a planning
// problem: types, objects, function and predicate symbols, the table of
// ground state variables, and the extensions of static symbols.
//
// A ProblemInfo is built once through a Builder and never mutated
// afterwards, which makes it safe to share across concurrent heuristic
// evaluations.
type ProblemInfo struct {
	typeNames   []string
	typeObjects [][]ObjectIdx // per type, ascending object ids

	objectNames []string
	objectTypes []TypeIdx

	symbols     []Symbol
	symbolIDs   map[string]SymbolIdx
	symbolVars  [][]VariableIdx // per fluent symbol, its state variables
	staticTable map[uint64]ObjectIdx

	variables  []variableInfo
	variableID map[uint64]VariableIdx
}

// NumTypes returns the number of declared types, including TypeBool.
func (pi *ProblemInfo) NumTypes() int { return len(pi.typeNames) }

// TypeName returns the declared name of a type.
func (pi *ProblemInfo) TypeName(t TypeIdx) string { return pi.typeNames[t] }

// TypeObjects returns the objects of the given type in ascending id order.
// The returned slice is shared and must not be modified.
func (pi *ProblemInfo) TypeObjects(t TypeIdx) []ObjectIdx { return pi.typeObjects[t] }

// NumObjects returns the number of objects, including the two booleans.
func (pi *ProblemInfo) NumObjects() int { return len(pi.objectNames) }

// ObjectName returns the declared name of an object.
func (pi *ProblemInfo) ObjectName(o ObjectIdx) string { return pi.objectNames[o] }

// ObjectType returns the type an object belongs to.
func (pi *ProblemInfo) ObjectType(o ObjectIdx) TypeIdx { return pi.objectTypes[o] }

// NumSymbols returns the number of declared function and predicate symbols.
func (pi *ProblemInfo) NumSymbols() int { return len(pi.symbols) }

// Symbol returns the descriptor of a symbol.
func (pi *ProblemInfo) Symbol(s SymbolIdx) Symbol { return pi.symbols[s] }

// SymbolID looks a symbol up by name.
func (pi *ProblemInfo) SymbolID(name string) (SymbolIdx, bool) {
	s, ok := pi.symbolIDs[name]
	return s, ok
}

// NumVariables returns the number of ground state variables.
func (pi *ProblemInfo) NumVariables() int { return len(pi.variables) }

// VariableName returns the printable name of a state variable, e.g.
// "loc(truck1)".
func (pi *ProblemInfo) VariableName(v VariableIdx) string { return pi.variables[v].name }

// VariableSymbol returns the fluent symbol underlying a state variable.
func (pi *ProblemInfo) VariableSymbol(v VariableIdx) SymbolIdx { return pi.variables[v].symbol }

// IsPredicative reports whether the variable ranges over {false, true}.
func (pi *ProblemInfo) IsPredicative(v VariableIdx) bool {
	return pi.symbols[pi.variables[v].symbol].ValueType == TypeBool
}

// VariableDomain returns the ascending set of values the variable may take:
// the objects of its symbol's value type.
func (pi *ProblemInfo) VariableDomain(v VariableIdx) []ObjectIdx {
	return pi.typeObjects[pi.symbols[pi.variables[v].symbol].ValueType]
}

// VariableID resolves the state variable denoted by applying a fluent
// symbol to the given objects, e.g. loc(truck1).
func (pi *ProblemInfo) VariableID(s SymbolIdx, args ...ObjectIdx) (VariableIdx, bool) {
	k, ok := packKey(uint64(s), args)
	if !ok {
		return 0, false
	}
	v, ok := pi.variableID[k]
	return v, ok
}

// SymbolVariables returns all state variables whose underlying symbol is s,
// in ascending order. Empty for static symbols.
func (pi *ProblemInfo) SymbolVariables(s SymbolIdx) []VariableIdx { return pi.symbolVars[s] }

// StaticValue returns the value of a static symbol applied to the given
// objects. The second result is false when the extension does not define
// the tuple; for static predicates an undefined tuple reads as false.
func (pi *ProblemInfo) StaticValue(s SymbolIdx, args []ObjectIdx) (ObjectIdx, bool) {
	k, ok := packKey(uint64(s), args)
	if !ok {
		return 0, false
	}
	v, ok := pi.staticTable[k]
	return v, ok
}

// CheckValue reports whether value is inside the variable's domain.
func (pi *ProblemInfo) CheckValue(v VariableIdx, value ObjectIdx) bool {
	if int(value) < 0 || int(value) >= len(pi.objectTypes) {
		return false
	}
	return pi.objectTypes[value] == pi.symbols[pi.variables[v].symbol].ValueType
}

// packKey packs a symbol id and up to keyArity object arguments into a
// single uint64 lookup key, 16 bits per component.
func packKey(head uint64, args []ObjectIdx) (uint64, bool) {
	if len(args) > keyArity || head >= 1<<16 {
		return 0, false
	}
	k := head
	for _, a := range args {
		if a < 0 || uint64(a) >= 1<<16 {
			return 0, false
		}
		k = k<<16 | uint64(a)
	}
	// Shift remaining slots so that keys of different arity never collide.
	for i := len(args); i < keyArity; i++ {
		k = k<<16 | 0xffff
	}
	return k, true
}

// Builder accumulates a problem's symbol and object tables and produces an
// immutable ProblemInfo. The zero Builder is not usable; call NewBuilder.
//
// Builders are single-goroutine constructs; the resulting ProblemInfo is
// what gets shared.
type Builder struct {
	info *ProblemInfo
	errs []error
}

// NewBuilder returns a Builder preloaded with the boolean type and its two
// objects.
func NewBuilder() *Builder {
	pi := &ProblemInfo{
		typeNames:   []string{"bool"},
		typeObjects: [][]ObjectIdx{{ObjectFalse, ObjectTrue}},
		objectNames: []string{"false", "true"},
		objectTypes: []TypeIdx{TypeBool, TypeBool},
		symbolIDs:   make(map[string]SymbolIdx),
		staticTable: make(map[uint64]ObjectIdx),
		variableID:  make(map[uint64]VariableIdx),
	}
	return &Builder{info: pi}
}

// AddType declares a new object type and returns its id.
func (b *Builder) AddType(name string) TypeIdx {
	t := TypeIdx(len(b.info.typeNames))
	b.info.typeNames = append(b.info.typeNames, name)
	b.info.typeObjects = append(b.info.typeObjects, nil)
	return t
}

// AddObject declares a new object of the given type and returns its id.
func (b *Builder) AddObject(name string, t TypeIdx) ObjectIdx {
	if int(t) <= 0 || int(t) >= len(b.info.typeNames) {
		b.errs = append(b.errs, fmt.Errorf("object %q: type %d not declared", name, t))
		return -1
	}
	o := ObjectIdx(len(b.info.objectNames))
	b.info.objectNames = append(b.info.objectNames, name)
	b.info.objectTypes = append(b.info.objectTypes, t)
	b.info.typeObjects[t] = append(b.info.typeObjects[t], o)
	return o
}

// AddFluentSymbol declares a fluent function symbol; its ground
// applications become state variables. Use TypeBool as value type for
// predicates.
func (b *Builder) AddFluentSymbol(name string, signature []TypeIdx, valueType TypeIdx) SymbolIdx {
	return b.addSymbol(name, signature, valueType, true)
}

// AddStaticSymbol declares a static function symbol whose extension is
// provided through AddStaticTuple.
func (b *Builder) AddStaticSymbol(name string, signature []TypeIdx, valueType TypeIdx) SymbolIdx {
	return b.addSymbol(name, signature, valueType, false)
}

func (b *Builder) addSymbol(name string, signature []TypeIdx, valueType TypeIdx, fluent bool) SymbolIdx {
	if _, dup := b.info.symbolIDs[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("symbol %q declared twice", name))
	}
	if len(signature) > keyArity {
		b.errs = append(b.errs, fmt.Errorf("symbol %q: arity %d exceeds supported maximum %d", name, len(signature), keyArity))
	}
	s := SymbolIdx(len(b.info.symbols))
	b.info.symbols = append(b.info.symbols, Symbol{
		Name:      name,
		Signature: append([]TypeIdx(nil), signature...),
		ValueType: valueType,
		Fluent:    fluent,
	})
	b.info.symbolIDs[name] = s
	b.info.symbolVars = append(b.info.symbolVars, nil)
	return s
}

// AddStaticTuple records one tuple of a static symbol's extension.
func (b *Builder) AddStaticTuple(s SymbolIdx, args []ObjectIdx, value ObjectIdx) {
	sym := b.info.symbols[s]
	if sym.Fluent {
		b.errs = append(b.errs, fmt.Errorf("symbol %q is fluent, cannot add static tuple", sym.Name))
		return
	}
	if len(args) != len(sym.Signature) {
		b.errs = append(b.errs, fmt.Errorf("static %q: got %d arguments, want %d", sym.Name, len(args), len(sym.Signature)))
		return
	}
	k, ok := packKey(uint64(s), args)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("static %q: arguments out of packable range", sym.Name))
		return
	}
	b.info.staticTable[k] = value
}

// AddVariable declares the ground state variable obtained by applying a
// fluent symbol to concrete objects, and returns its id.
func (b *Builder) AddVariable(s SymbolIdx, args ...ObjectIdx) VariableIdx {
	sym := b.info.symbols[s]
	if !sym.Fluent {
		b.errs = append(b.errs, fmt.Errorf("symbol %q is static, cannot derive a state variable", sym.Name))
		return -1
	}
	if len(args) != len(sym.Signature) {
		b.errs = append(b.errs, fmt.Errorf("variable over %q: got %d arguments, want %d", sym.Name, len(args), len(sym.Signature)))
		return -1
	}
	k, ok := packKey(uint64(s), args)
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("variable over %q: arguments out of packable range", sym.Name))
		return -1
	}
	if v, dup := b.info.variableID[k]; dup {
		return v
	}
	name := sym.Name
	if len(args) > 0 {
		name += "("
		for i, a := range args {
			if i > 0 {
				name += ", "
			}
			name += b.info.objectNames[a]
		}
		name += ")"
	}
	v := VariableIdx(len(b.info.variables))
	b.info.variables = append(b.info.variables, variableInfo{
		name:   name,
		symbol: s,
		args:   append([]ObjectIdx(nil), args...),
	})
	b.info.variableID[k] = v
	b.info.symbolVars[s] = append(b.info.symbolVars[s], v)
	return v
}

// GroundAllVariables derives one state variable for every well-typed
// application of every fluent symbol. Convenient for small problems where
// reachability-based variable selection is unnecessary.
func (b *Builder) GroundAllVariables() {
	for s := range b.info.symbols {
		sym := b.info.symbols[s]
		if !sym.Fluent {
			continue
		}
		b.groundSymbol(SymbolIdx(s), sym.Signature, nil)
	}
}

func (b *Builder) groundSymbol(s SymbolIdx, remaining []TypeIdx, args []ObjectIdx) {
	if len(remaining) == 0 {
		b.AddVariable(s, args...)
		return
	}
	for _, o := range b.info.typeObjects[remaining[0]] {
		b.groundSymbol(s, remaining[1:], append(args, o))
	}
}

// Build validates the accumulated tables and returns the immutable
// ProblemInfo. All diagnostics wrap ErrInconsistentProblem.
func (b *Builder) Build() (*ProblemInfo, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInconsistentProblem, b.errs[0])
	}
	pi := b.info
	for t := 1; t < len(pi.typeNames); t++ {
		if len(pi.typeObjects[t]) == 0 {
			return nil, fmt.Errorf("%w: type %q has no objects", ErrInconsistentProblem, pi.typeNames[t])
		}
	}
	for v := range pi.variables {
		if len(pi.VariableDomain(VariableIdx(v))) == 0 {
			return nil, fmt.Errorf("%w: variable %q has an empty domain", ErrInconsistentProblem, pi.variables[v].name)
		}
	}
	for t := range pi.typeObjects {
		objs := pi.typeObjects[t]
		sort.Slice(objs, func(i, j int) bool { return objs[i] < objs[j] })
	}
	return pi, nil
}
