// Package fstrips models a finite-domain lifted planning language with
// function symbols and quantified conditions. It provides the immutable
// problem description (types, objects, symbols, state variables), compact
// states, ground atoms with a dense atom index, and a small closed AST of
// terms and formulas together with their interpretation against a state.
//
// The package is the data side of a forward-search planner: everything here
// is either immutable after construction (ProblemInfo, AtomIndex, actions)
// or cheap to copy and exclusively owned by its creator (State, Binding).
// Heuristic machinery that consumes these types lives in package rpg.
//
// Thread safety: ProblemInfo, AtomIndex, GroundAction and LiftedAction are
// safe for concurrent read access once constructed. States are not
// synchronized; each search node or evaluation owns its own copies.
package fstrips

import "errors"

// ObjectIdx identifies an object of the planning universe. Boolean values
// are coerced to objects 0 (false) and 1 (true).
type ObjectIdx int

// VariableIdx identifies a ground state variable, e.g. loc(truck1).
type VariableIdx int

// SymbolIdx identifies a function or predicate symbol, e.g. loc.
type SymbolIdx int

// TypeIdx identifies an object type. Types partition the universe.
type TypeIdx int

// ActionIdx identifies a ground action in the problem's action table.
type ActionIdx int

// AtomIdx is the dense index of a ground atom in an AtomIndex.
type AtomIdx int

// Sentinel errors reported by constructors and interpreters.
var (
	// ErrInconsistentProblem flags a malformed problem description: an
	// empty type, a variable with an empty domain, or an initial value
	// outside its variable's domain. Fatal at construction time.
	ErrInconsistentProblem = errors.New("inconsistent problem description")

	// ErrUnboundVariable is returned when interpretation reaches a bound
	// variable that the current binding leaves unassigned.
	ErrUnboundVariable = errors.New("unbound variable in interpretation")

	// ErrNotGround is returned when an operation requiring a fully ground
	// construct encounters free parameters.
	ErrNotGround = errors.New("construct is not ground")

	// ErrUnknownSymbol is returned when a term references a symbol or a
	// state variable the problem does not declare.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
