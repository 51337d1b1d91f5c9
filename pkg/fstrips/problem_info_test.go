package fstrips

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	b := NewBuilder()
	city := b.AddType("city")
	paris := b.AddObject("paris", city)
	lyon := b.AddObject("lyon", city)
	truck := b.AddType("truck")
	t1 := b.AddObject("t1", truck)

	at := b.AddFluentSymbol("at", []TypeIdx{truck}, city)
	road := b.AddStaticSymbol("road", []TypeIdx{city, city}, TypeBool)
	b.AddStaticTuple(road, []ObjectIdx{paris, lyon}, ObjectTrue)

	v := b.AddVariable(at, t1)
	info, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, 1, info.NumVariables())
	require.Equal(t, "at(t1)", info.VariableName(v))
	require.False(t, info.IsPredicative(v))
	require.Equal(t, []ObjectIdx{paris, lyon}, info.VariableDomain(v))

	got, ok := info.VariableID(at, t1)
	require.True(t, ok)
	require.Equal(t, v, got)

	val, ok := info.StaticValue(road, []ObjectIdx{paris, lyon})
	require.True(t, ok)
	require.Equal(t, ObjectTrue, val)
	_, ok = info.StaticValue(road, []ObjectIdx{lyon, paris})
	require.False(t, ok)
}

func TestBuilderRejectsEmptyType(t *testing.T) {
	b := NewBuilder()
	b.AddType("ghost")
	_, err := b.Build()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInconsistentProblem))
}

func TestBuilderRejectsDuplicateSymbol(t *testing.T) {
	b := NewBuilder()
	b.AddFluentSymbol("p", nil, TypeBool)
	b.AddFluentSymbol("p", nil, TypeBool)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInconsistentProblem)
}

func TestBuilderRejectsStaticTupleOnFluent(t *testing.T) {
	b := NewBuilder()
	p := b.AddFluentSymbol("p", nil, TypeBool)
	b.AddStaticTuple(p, nil, ObjectTrue)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInconsistentProblem)
}

func TestGroundAllVariables(t *testing.T) {
	b := NewBuilder()
	city := b.AddType("city")
	b.AddObject("paris", city)
	b.AddObject("lyon", city)
	b.AddFluentSymbol("visited", []TypeIdx{city}, TypeBool)
	b.GroundAllVariables()
	info, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, info.NumVariables())
	for v := 0; v < info.NumVariables(); v++ {
		require.True(t, info.IsPredicative(VariableIdx(v)))
	}
}
