package rpg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]string{
		"heuristic.variant":                     "unreached_atom",
		"heuristic.use_min_hmax_value_selector": "true",
		"rpg.max_layers":                        "64",
		"search.unrelated":                      "ignored",
	})
	require.NoError(t, err)
	require.Equal(t, VariantUnreachedAtom, cfg.Variant)
	require.True(t, cfg.UseMinHMaxValueSelector)
	require.Equal(t, 64, cfg.MaxLayers)
}

func TestConfigFromMapDefaults(t *testing.T) {
	cfg, err := ConfigFromMap(nil)
	require.NoError(t, err)
	require.Equal(t, VariantDirectCRPG, cfg.Variant)
	require.False(t, cfg.UseMinHMaxValueSelector)
	require.Zero(t, cfg.MaxLayers)
}

func TestConfigFromMapRejectsBadValues(t *testing.T) {
	_, err := ConfigFromMap(map[string]string{"heuristic.variant": "astar"})
	require.ErrorIs(t, err, ErrUnknownVariant)

	_, err = ConfigFromMap(map[string]string{"rpg.max_layers": "-1"})
	require.Error(t, err)

	_, err = ConfigFromMap(map[string]string{"heuristic.use_min_hmax_value_selector": "perhaps"})
	require.Error(t, err)
}

func TestFactorySelectsVariant(t *testing.T) {
	fx := buildStrips(t, []string{"p"}, []string{"p"}, []string{"p"}, nil)

	for _, variant := range []Variant{VariantDirectCRPG, VariantDirectHMax, VariantUnreachedAtom} {
		cfg := DefaultConfig()
		cfg.Variant = variant
		h, err := New(fx.problem, cfg, nil)
		require.NoError(t, err)
		v, err := h.Evaluate(fx.problem.Init)
		require.NoError(t, err)
		require.Zero(t, v)
	}

	cfg := DefaultConfig()
	cfg.Variant = "astar"
	_, err := New(fx.problem, cfg, nil)
	require.ErrorIs(t, err, ErrUnknownVariant)
}
