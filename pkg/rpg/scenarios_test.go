package rpg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// The seed already satisfies the goal; no layer is expanded.
func TestTrivialGoal(t *testing.T) {
	fx := buildStrips(t, []string{"p"}, []string{"p"}, []string{"p"}, nil)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 0, v)
}

// A single action bridges seed and goal.
func TestSingleStep(t *testing.T) {
	fx := buildStrips(t, []string{"p", "q"}, []string{"p"}, []string{"q"},
		[]stripsAction{{name: "a", pre: []string{"p"}, add: []string{"q"}}})
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, plan, err := h.EvaluatePlan(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, []fstrips.ActionIdx{0}, plan)
}

// A two-step chain; the chained atoms appear at layers 1 and 2.
func TestChain(t *testing.T) {
	fx := buildStrips(t, []string{"a", "b", "c"}, []string{"a"}, []string{"c"},
		[]stripsAction{
			{name: "A", pre: []string{"a"}, add: []string{"b"}},
			{name: "B", pre: []string{"b"}, add: []string{"c"}},
		})
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	// Drive the expansion by hand to observe the layer indices.
	relaxed := NewRelaxedState(fx.problem.Init, fx.problem.Atoms)
	bookkeeping := NewRPGData(fx.problem.Init, fx.problem.Atoms)
	for layer := 1; layer <= 2; layer++ {
		for _, a := range fx.problem.Ground {
			m, err := NewActionManager(a, fx.problem.Atoms)
			require.NoError(t, err)
			require.NoError(t, m.Process(relaxed, bookkeeping))
		}
		relaxed.Accumulate(bookkeeping.NovelAtoms())
		bookkeeping.AdvanceLayer()
	}
	atomB := fx.problem.Atoms.MustIndex(fstrips.Atom{Variable: fx.vars["b"], Value: fstrips.ObjectTrue})
	atomC := fx.problem.Atoms.MustIndex(fstrips.Atom{Variable: fx.vars["c"], Value: fstrips.ObjectTrue})
	require.Equal(t, 1, bookkeeping.Layer(atomB))
	require.Equal(t, 2, bookkeeping.Layer(atomC))
}

// A diamond; both independent supports enter the plan.
func TestDiamond(t *testing.T) {
	fx := diamondFixture(t)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, plan, err := h.EvaluatePlan(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, []fstrips.ActionIdx{0, 1, 2}, plan)
}

// The only action's precondition is unreachable.
func TestDeadEnd(t *testing.T) {
	fx := buildStrips(t, []string{"a", "b", "z"}, []string{"a"}, []string{"z"},
		[]stripsAction{{name: "blocked", pre: []string{"b"}, add: []string{"z"}}})
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, Unreachable, v)
}

// On the diamond, the layer-index variant scores 2 while the
// relaxed-plan variant scores 3.
func TestHMaxVariant(t *testing.T) {
	fx := diamondFixture(t)
	hmax, err := NewDirectHMax(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := hmax.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	crpg, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err = crpg.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

// Boundary: a problem with no actions and a non-goal seed is a dead end
// after a single empty layer.
func TestNoActions(t *testing.T) {
	fx := buildStrips(t, []string{"p", "q"}, []string{"p"}, []string{"q"}, nil)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, Unreachable, v)
}

// Boundary: a constant-true precondition producing the only goal atom.
func TestConstantTruePrecondition(t *testing.T) {
	fx := buildStrips(t, []string{"g"}, nil, []string{"g"},
		[]stripsAction{{name: "win", add: []string{"g"}}})
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

// The layer cap converts a long chain into Unreachable.
func TestLayerCap(t *testing.T) {
	fx := buildStrips(t, []string{"a", "b", "c", "d"}, []string{"a"}, []string{"d"},
		[]stripsAction{
			{name: "A", pre: []string{"a"}, add: []string{"b"}},
			{name: "B", pre: []string{"b"}, add: []string{"c"}},
			{name: "C", pre: []string{"c"}, add: []string{"d"}},
		})
	cfg := DefaultConfig()
	cfg.MaxLayers = 2
	h, err := NewDirectCRPG(fx.problem, cfg, nil)
	require.NoError(t, err)
	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, Unreachable, v)

	cfg.MaxLayers = 3
	h, err = NewDirectCRPG(fx.problem, cfg, nil)
	require.NoError(t, err)
	v, err = h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, 3, v)
}
