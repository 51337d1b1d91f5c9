package fstrips

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// mixedInfo builds a problem with one multivalued and two boolean
// variables, exercising both state banks.
func mixedInfo(t *testing.T) (*ProblemInfo, VariableIdx, VariableIdx, VariableIdx) {
	t.Helper()
	b := NewBuilder()
	city := b.AddType("city")
	b.AddObject("paris", city)
	b.AddObject("lyon", city)
	b.AddObject("nice", city)
	truck := b.AddType("truck")
	t1 := b.AddObject("t1", truck)

	at := b.AddFluentSymbol("at", []TypeIdx{truck}, city)
	fueled := b.AddFluentSymbol("fueled", []TypeIdx{truck}, TypeBool)
	ready := b.AddFluentSymbol("ready", nil, TypeBool)

	vAt := b.AddVariable(at, t1)
	vFueled := b.AddVariable(fueled, t1)
	vReady := b.AddVariable(ready)
	info, err := b.Build()
	require.NoError(t, err)
	return info, vAt, vFueled, vReady
}

func TestAtomIndexBijection(t *testing.T) {
	info, _, _, _ := mixedInfo(t)
	index := NewAtomIndex(info)

	// 3 city values + 2 + 2 boolean values.
	require.Equal(t, 7, index.Size())

	for i := 0; i < index.Size(); i++ {
		atom := index.Atom(AtomIdx(i))
		back, ok := index.Index(atom)
		require.True(t, ok)
		require.Equal(t, AtomIdx(i), back)
	}
}

func TestAtomIndexRejectsOutOfDomain(t *testing.T) {
	info, vAt, _, _ := mixedInfo(t)
	index := NewAtomIndex(info)

	// The truck's location cannot be a boolean object.
	_, ok := index.Index(Atom{Variable: vAt, Value: ObjectTrue})
	require.False(t, ok)
	_, ok = index.Index(Atom{Variable: vAt, Value: ObjectIdx(99)})
	require.False(t, ok)
}

func TestVariableAtoms(t *testing.T) {
	info, vAt, vFueled, _ := mixedInfo(t)
	index := NewAtomIndex(info)

	require.Len(t, index.VariableAtoms(vAt), 3)
	require.Len(t, index.VariableAtoms(vFueled), 2)
	for _, ai := range index.VariableAtoms(vFueled) {
		require.Equal(t, vFueled, index.Atom(ai).Variable)
	}
}
