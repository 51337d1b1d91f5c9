package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
	"github.com/gitrdm/gofstrips/pkg/rpg"
	"github.com/gitrdm/gofstrips/pkg/search"
)

const chainYAML = `
name: chain
types: [token]
objects:
  tok: token
symbols:
  - name: has_a
    args: [token]
    value: bool
  - name: has_b
    args: [token]
    value: bool
  - name: has_c
    args: [token]
    value: bool
init:
  - {var: has_a, args: [tok]}
goal:
  eq: {lhs: {fluent: has_c, args: [{obj: tok}]}, rhs: {obj: true}}
actions:
  - name: step-one
    params:
      - {name: t, type: token}
    pre:
      eq: {lhs: {fluent: has_a, args: [{param: t}]}, rhs: {obj: true}}
    effects:
      - set: {fluent: has_b, args: [{param: t}]}
        to: {obj: true}
  - name: step-two
    params:
      - {name: t, type: token}
    pre:
      eq: {lhs: {fluent: has_b, args: [{param: t}]}, rhs: {obj: true}}
    effects:
      - set: {fluent: has_c, args: [{param: t}]}
        to: {obj: true}
`

func TestLoadChain(t *testing.T) {
	problem, err := Load([]byte(chainYAML))
	require.NoError(t, err)
	require.Equal(t, 3, problem.Info.NumVariables())
	require.Len(t, problem.Ground, 2)

	h, err := rpg.NewDirectCRPG(problem, rpg.DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(problem.Init)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	result, err := search.NewEngine(problem, h, 1, nil).Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Plan, 2)
	ok, err := search.Validate(problem, result.Plan)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoadStaticsAndFunctions(t *testing.T) {
	const doc = `
name: drive
types: [city]
objects:
  lyon: city
  paris: city
symbols:
  - name: at
    args: []
    value: city
  - name: road
    args: [city, city]
    value: bool
    static: true
statics:
  - symbol: road
    tuples:
      - args: [paris, lyon]
init:
  - {var: at, args: [], value: paris}
goal:
  eq: {lhs: {fluent: at, args: []}, rhs: {obj: lyon}}
actions:
  - name: drive
    params:
      - {name: from, type: city}
      - {name: to, type: city}
    pre:
      and:
        - eq: {lhs: {fluent: at, args: []}, rhs: {param: from}}
        - eq: {lhs: {static: road, args: [{param: from}, {param: to}]}, rhs: {obj: true}}
    effects:
      - set: {fluent: at, args: []}
        to: {param: to}
`
	problem, err := Load([]byte(doc))
	require.NoError(t, err)
	// Two cities yield four ground drive instances.
	require.Len(t, problem.Ground, 4)

	h, err := rpg.NewDirectCRPG(problem, rpg.DefaultConfig(), nil)
	require.NoError(t, err)
	v, err := h.Evaluate(problem.Init)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown object type", "objects: {x: ghost}"},
		{"unknown init symbol", "init: [{var: nope}]"},
		{"malformed yaml", ":{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.doc))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsOutOfDomainInit(t *testing.T) {
	const doc = `
types: [city]
objects:
  paris: city
symbols:
  - name: at
    args: []
    value: city
init:
  - {var: at, args: [], value: true}
`
	_, err := Load([]byte(doc))
	require.ErrorIs(t, err, fstrips.ErrInconsistentProblem)
}
