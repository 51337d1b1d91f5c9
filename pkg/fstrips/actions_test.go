package fstrips

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroundActionApply(t *testing.T) {
	fx := newInterpreterFixture(t)

	drive := NewGroundAction(0, "drive t1 paris lyon",
		Eq(NewStateVariable(fx.atT1), NewConstant(fx.paris)),
		NewEffect(NewStateVariable(fx.atT1), NewConstant(fx.lyon)),
	)

	ok, err := drive.Applicable(fx.state)
	require.NoError(t, err)
	require.True(t, ok)

	changes, err := drive.Apply(fx.state)
	require.NoError(t, err)
	require.Equal(t, []Atom{{Variable: fx.atT1, Value: fx.lyon}}, changes)

	next := fx.state.Successor(changes)
	require.Equal(t, fx.lyon, next.Value(fx.atT1))

	// Once moved, the action no longer applies.
	ok, err = drive.Applicable(next)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConditionalEffectSkipsWhenConditionFails(t *testing.T) {
	fx := newInterpreterFixture(t)

	a := NewGroundAction(0, "noop-ish", Truth(),
		NewConditionalEffect(
			Eq(NewStateVariable(fx.atT1), NewConstant(fx.lyon)), // false in fixture
			NewStateVariable(fx.atT2), NewConstant(fx.paris),
		),
	)
	changes, err := a.Apply(fx.state)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestApplyRejectsOutOfDomainAssignment(t *testing.T) {
	fx := newInterpreterFixture(t)

	// paris + 100 as an object id lands outside the city domain.
	broken := NewGroundAction(0, "broken", Truth(),
		NewEffect(NewStateVariable(fx.atT1),
			NewArithmeticTerm(OpAdd, NewConstant(fx.paris), NewConstant(ObjectIdx(100)))),
	)
	_, err := broken.Apply(fx.state)
	require.ErrorIs(t, err, ErrInconsistentProblem)
}

func TestEffectHeadMustBeStateVariable(t *testing.T) {
	fx := newInterpreterFixture(t)
	a := NewGroundAction(0, "bad-head", Truth(),
		NewEffect(NewConstant(fx.paris), NewConstant(fx.lyon)),
	)
	_, err := a.Apply(fx.state)
	require.ErrorIs(t, err, ErrNotGround)
}

func TestProblemValidatesActionIDs(t *testing.T) {
	fx := newInterpreterFixture(t)
	misnumbered := NewGroundAction(7, "drive", Truth())
	_, err := NewProblem(fx.info, nil, nil, nil, []*GroundAction{misnumbered}, nil)
	require.ErrorIs(t, err, ErrInconsistentProblem)
}
