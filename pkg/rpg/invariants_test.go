package rpg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// Monotonicity of R: across layers every variable's reachable set only
// grows, and first-achiever layers never point at or above the layer of
// the atom they support.
func TestExpansionInvariants(t *testing.T) {
	fx := diamondFixture(t)
	problem := fx.problem

	relaxed := NewRelaxedState(problem.Init, problem.Atoms)
	bookkeeping := NewRPGData(problem.Init, problem.Atoms)

	managers := make([]*ActionManager, len(problem.Ground))
	for i, a := range problem.Ground {
		m, err := NewActionManager(a, problem.Atoms)
		require.NoError(t, err)
		managers[i] = m
	}

	prev := make(map[fstrips.VariableIdx][]fstrips.ObjectIdx)
	for layer := 1; layer <= 3; layer++ {
		for _, m := range managers {
			require.NoError(t, m.Process(relaxed, bookkeeping))
		}
		relaxed.Accumulate(bookkeeping.NovelAtoms())

		for v := 0; v < problem.Info.NumVariables(); v++ {
			vid := fstrips.VariableIdx(v)
			now := relaxed.Reachable(vid)
			for _, old := range prev[vid] {
				require.Contains(t, now, old, "reachable set of %s shrank", problem.Info.VariableName(vid))
			}
			prev[vid] = append([]fstrips.ObjectIdx(nil), now...)
		}
		bookkeeping.AdvanceLayer()
	}

	// First-achiever minimality over every achieved atom.
	for i := 0; i < problem.Atoms.Size(); i++ {
		idx := fstrips.AtomIdx(i)
		l := bookkeeping.Layer(idx)
		if l <= 0 {
			continue
		}
		for _, w := range bookkeeping.Support(idx).Witness {
			require.Less(t, bookkeeping.Layer(w), l,
				"support witness of %s sits at or above its layer", problem.Atoms.Atom(idx))
		}
	}
}

// First-achiever wins: re-processing the same layer twice must not
// overwrite supports or layers.
func TestFirstAchieverIsStable(t *testing.T) {
	fx := diamondFixture(t)
	problem := fx.problem

	relaxed := NewRelaxedState(problem.Init, problem.Atoms)
	bookkeeping := NewRPGData(problem.Init, problem.Atoms)
	m, err := NewActionManager(problem.Ground[0], problem.Atoms) // A1 adds x
	require.NoError(t, err)
	require.NoError(t, m.Process(relaxed, bookkeeping))

	atomX := problem.Atoms.MustIndex(fstrips.Atom{Variable: fx.vars["x"], Value: fstrips.ObjectTrue})
	first := bookkeeping.Support(atomX)

	require.NoError(t, m.Process(relaxed, bookkeeping))
	require.Empty(t, cmp.Diff(first, bookkeeping.Support(atomX)))
	require.Equal(t, 1, bookkeeping.Layer(atomX))
}

// Determinism: identical evaluations return the same value and the same
// chosen action set.
func TestDeterministicEvaluation(t *testing.T) {
	fx := diamondFixture(t)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)

	v1, plan1, err := h.EvaluatePlan(fx.problem.Init)
	require.NoError(t, err)
	v2, plan2, err := h.EvaluatePlan(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, plan1, plan2)
}

// Whitelist monotonicity: a larger whitelist never yields a larger value.
func TestWhitelistMonotonicity(t *testing.T) {
	fx := diamondFixture(t)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)

	full := []fstrips.ActionIdx{0, 1, 2}
	noA2 := []fstrips.ActionIdx{0, 2}

	vFull, err := h.EvaluateWhitelist(fx.problem.Init, full)
	require.NoError(t, err)
	vPart, err := h.EvaluateWhitelist(fx.problem.Init, noA2)
	require.NoError(t, err)

	require.Equal(t, 3, vFull)
	// Without A2 the fact y is unreachable, so the goal is too.
	require.Equal(t, Unreachable, vPart)
	require.LessOrEqual(t, vFull, vPart)
}

// Round-trip law: replaying the extracted relaxed plan under delete
// relaxation from the seed reaches the goal, and the plan has no
// duplicates.
func TestExtractedPlanRoundTrip(t *testing.T) {
	fx := diamondFixture(t)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)

	v, plan, err := h.EvaluatePlan(fx.problem.Init)
	require.NoError(t, err)
	require.Len(t, plan, v)

	seen := make(map[fstrips.ActionIdx]bool)
	for _, a := range plan {
		require.False(t, seen[a], "duplicate action %d in relaxed plan", a)
		seen[a] = true
	}
	require.True(t, relaxedSimulate(t, fx.problem, fx.problem.Init, plan))
}

// The pruning hook participates in the loop: a pruner reporting failure
// turns the evaluation into Unreachable.
func TestPrunerFailureShortCircuits(t *testing.T) {
	fx := diamondFixture(t)
	h, err := NewDirectCRPG(fx.problem, DefaultConfig(), nil)
	require.NoError(t, err)
	h.SetPruner(failingPruner{})

	v, err := h.Evaluate(fx.problem.Init)
	require.NoError(t, err)
	require.Equal(t, Unreachable, v)
}

type failingPruner struct{}

func (failingPruner) Prune(*RelaxedState) (PruneResult, error) { return PruneFailure, nil }
