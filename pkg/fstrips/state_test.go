package fstrips

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStateDefaultsAndInit(t *testing.T) {
	info, vAt, vFueled, vReady := mixedInfo(t)
	indexer := NewStateAtomIndexer(info)

	paris := info.VariableDomain(vAt)[0]
	s, err := NewState(info, indexer, []Atom{{Variable: vFueled, Value: ObjectTrue}})
	require.NoError(t, err)

	// Predicates default to false, multivalued variables to the first
	// value of their domain.
	require.Equal(t, paris, s.Value(vAt))
	require.Equal(t, ObjectTrue, s.Value(vFueled))
	require.Equal(t, ObjectFalse, s.Value(vReady))
	require.True(t, s.Contains(Atom{Variable: vFueled, Value: ObjectTrue}))
}

func TestStateRejectsOutOfDomainInit(t *testing.T) {
	info, vAt, _, _ := mixedInfo(t)
	indexer := NewStateAtomIndexer(info)
	_, err := NewState(info, indexer, []Atom{{Variable: vAt, Value: ObjectTrue}})
	require.ErrorIs(t, err, ErrInconsistentProblem)
}

func TestSuccessorLeavesParentUntouched(t *testing.T) {
	info, vAt, _, vReady := mixedInfo(t)
	indexer := NewStateAtomIndexer(info)
	s, err := NewState(info, indexer, nil)
	require.NoError(t, err)

	lyon := info.VariableDomain(vAt)[1]
	next := s.Successor([]Atom{
		{Variable: vAt, Value: lyon},
		{Variable: vReady, Value: ObjectTrue},
	})

	require.Equal(t, lyon, next.Value(vAt))
	require.Equal(t, ObjectTrue, next.Value(vReady))
	require.NotEqual(t, lyon, s.Value(vAt))
	require.Equal(t, ObjectFalse, s.Value(vReady))
	require.False(t, s.Equal(next))
	require.NotEqual(t, s.Hash(), next.Hash())
}

func TestStateHashConsistency(t *testing.T) {
	info, vAt, vFueled, _ := mixedInfo(t)
	indexer := NewStateAtomIndexer(info)

	lyon := info.VariableDomain(vAt)[1]
	a, err := NewState(info, indexer, []Atom{{Variable: vAt, Value: lyon}, {Variable: vFueled, Value: ObjectTrue}})
	require.NoError(t, err)

	// The same assignment reached through a different path hashes and
	// compares identically.
	base, err := NewState(info, indexer, nil)
	require.NoError(t, err)
	b := base.
		Successor([]Atom{{Variable: vFueled, Value: ObjectTrue}}).
		Successor([]Atom{{Variable: vAt, Value: lyon}})

	require.Equal(t, a.Hash(), b.Hash())
	require.True(t, a.Equal(b))
	require.Empty(t, cmp.Diff(a.Atoms(), b.Atoms()))
}
