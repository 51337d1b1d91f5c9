// Package rpg implements the relaxed-planning-graph heuristic engine that
// guides forward state-space search: a layered delete-relaxed reachability
// graph over ground atoms, two dual strategies for extending it one layer at
// a time (an action-centric sweep and an atom-centric sweep backed by
// per-effect constraint-satisfaction instantiations), and the extraction of
// a relaxed plan whose cost is the returned heuristic value.
//
// Two heuristics are provided: DirectCRPG returns the cost of a greedily
// extracted relaxed plan (an h_FF-style estimate) and DirectHMax returns the
// index of the first graph layer in which the goal becomes satisfiable.
// UnreachedAtomRPG is the atom-centric variant for partially ground action
// schemas, where each effect carries a CSP over its free parameters.
//
// Concurrency: a heuristic value is shared read-only; every Evaluate call
// builds its own relaxed state, bookkeeping, and per-layer caches, so
// callers may run evaluations from multiple goroutines concurrently. There
// is no shared mutable state between in-flight evaluations.
package rpg

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// Unreachable is the heuristic value returned when no relaxed plan exists
// from the seed state: the expansion reached a fixpoint (or the layer cap)
// without covering the goal.
const Unreachable = math.MaxInt

// Heuristic is the interface the engine exposes upward to search.
//
// The contract on the returned estimate:
//
//	h == 0           iff the seed state satisfies the goal
//	h == Unreachable iff no relaxed plan exists from the seed
//	otherwise        a non-negative satisficing estimate
type Heuristic interface {
	Evaluate(seed *fstrips.State) (int, error)
}

// WhitelistHeuristic is the optional second form of the evaluation
// interface: the caller restricts the expansion to a subset of the ground
// actions, typically the helpful actions of a parent evaluation.
type WhitelistHeuristic interface {
	Heuristic
	EvaluateWhitelist(seed *fstrips.State, whitelist []fstrips.ActionIdx) (int, error)
}

// Variant names one of the heuristic drivers this package provides.
type Variant string

// Recognised heuristic variants.
const (
	VariantDirectCRPG    Variant = "direct_crpg"
	VariantDirectHMax    Variant = "direct_hmax"
	VariantUnreachedAtom Variant = "unreached_atom"
)

// ErrUnknownVariant is returned by New for unrecognised variant names.
var ErrUnknownVariant = errors.New("unknown heuristic variant")

// Config carries the options the core recognises.
type Config struct {
	// Variant selects the heuristic driver.
	Variant Variant `yaml:"variant"`

	// UseMinHMaxValueSelector makes the goal satisfiability check prefer
	// witness values whose atoms appeared in early graph layers, ties
	// broken by atom index.
	UseMinHMaxValueSelector bool `yaml:"use_min_hmax_value_selector"`

	// MaxLayers caps the number of graph layers per evaluation; zero
	// means unbounded. Exceeding the cap is reported as Unreachable.
	MaxLayers int `yaml:"max_layers"`
}

// DefaultConfig returns the default core configuration.
func DefaultConfig() Config {
	return Config{Variant: VariantDirectCRPG}
}

// ConfigFromMap reads the recognised option keys from a flat key/value map,
// leaving defaults in place for absent keys. Unknown keys are ignored, as
// the map is typically shared with the outer search's own options.
func ConfigFromMap(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()
	if v, ok := opts["heuristic.variant"]; ok {
		switch Variant(v) {
		case VariantDirectCRPG, VariantDirectHMax, VariantUnreachedAtom:
			cfg.Variant = Variant(v)
		default:
			return cfg, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
		}
	}
	if v, ok := opts["heuristic.use_min_hmax_value_selector"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("heuristic.use_min_hmax_value_selector: %w", err)
		}
		cfg.UseMinHMaxValueSelector = b
	}
	if v, ok := opts["rpg.max_layers"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("rpg.max_layers: invalid value %q", v)
		}
		cfg.MaxLayers = n
	}
	return cfg, nil
}
