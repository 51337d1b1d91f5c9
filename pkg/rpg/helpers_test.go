package rpg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// stripsAction is a compact boolean action description for tests:
// preconditions and added facts are named boolean variables.
type stripsAction struct {
	name string
	pre  []string
	add  []string
}

// stripsFixture is a fully boolean problem built from named facts.
type stripsFixture struct {
	problem *fstrips.Problem
	vars    map[string]fstrips.VariableIdx
}

// buildStrips assembles a boolean problem in the classical STRIPS subset:
// every variable is a predicate, preconditions and goals are conjunctions
// of positive facts, effects set facts true.
func buildStrips(t *testing.T, facts, init, goal []string, actions []stripsAction) *stripsFixture {
	t.Helper()
	b := fstrips.NewBuilder()
	syms := make(map[string]fstrips.SymbolIdx, len(facts))
	for _, f := range facts {
		syms[f] = b.AddFluentSymbol(f, nil, fstrips.TypeBool)
	}
	b.GroundAllVariables()
	info, err := b.Build()
	require.NoError(t, err)

	vars := make(map[string]fstrips.VariableIdx, len(facts))
	for _, f := range facts {
		v, ok := info.VariableID(syms[f])
		require.True(t, ok)
		vars[f] = v
	}

	holds := func(names []string) fstrips.Formula {
		subs := make([]fstrips.Formula, len(names))
		for i, n := range names {
			subs[i] = fstrips.Eq(fstrips.NewStateVariable(vars[n]), fstrips.NewConstant(fstrips.ObjectTrue))
		}
		if len(subs) == 1 {
			return subs[0]
		}
		return fstrips.And(subs...)
	}

	ground := make([]*fstrips.GroundAction, len(actions))
	for i, a := range actions {
		effects := make([]fstrips.ActionEffect, len(a.add))
		for j, f := range a.add {
			effects[j] = fstrips.NewEffect(fstrips.NewStateVariable(vars[f]), fstrips.NewConstant(fstrips.ObjectTrue))
		}
		pre := fstrips.Formula(fstrips.Truth())
		if len(a.pre) > 0 {
			pre = holds(a.pre)
		}
		ground[i] = fstrips.NewGroundAction(fstrips.ActionIdx(i), a.name, pre, effects...)
	}

	initAtoms := make([]fstrips.Atom, len(init))
	for i, f := range init {
		initAtoms[i] = fstrips.Atom{Variable: vars[f], Value: fstrips.ObjectTrue}
	}

	problem, err := fstrips.NewProblem(info, initAtoms, holds(goal), nil, ground, nil)
	require.NoError(t, err)
	return &stripsFixture{problem: problem, vars: vars}
}

// diamondFixture builds a diamond: two independent supports feeding one
// goal fact.
func diamondFixture(t *testing.T) *stripsFixture {
	return buildStrips(t,
		[]string{"a", "x", "y", "g"},
		[]string{"a"},
		[]string{"g"},
		[]stripsAction{
			{name: "A1", pre: []string{"a"}, add: []string{"x"}},
			{name: "A2", pre: []string{"a"}, add: []string{"y"}},
			{name: "B", pre: []string{"x", "y"}, add: []string{"g"}},
		})
}

// relaxedSimulate replays a set of ground actions under delete relaxation
// from seed until fixpoint and reports whether the goal is satisfiable in
// the resulting reachable sets.
func relaxedSimulate(t *testing.T, problem *fstrips.Problem, seed *fstrips.State, plan []fstrips.ActionIdx) bool {
	t.Helper()
	relaxed := NewRelaxedState(seed, problem.Atoms)
	bookkeeping := NewRPGData(seed, problem.Atoms)
	for {
		for _, idx := range plan {
			m, err := NewActionManager(problem.Ground[idx], problem.Atoms)
			require.NoError(t, err)
			require.NoError(t, m.Process(relaxed, bookkeeping))
		}
		if bookkeeping.NumNovel() == 0 {
			break
		}
		relaxed.Accumulate(bookkeeping.NovelAtoms())
		bookkeeping.AdvanceLayer()
	}
	_, ok, err := SatisfiableRelaxed(problem.Goal, relaxed, nil)
	require.NoError(t, err)
	return ok
}
