package rpg

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// New builds the heuristic selected by cfg.Variant. All variants share the
// same Heuristic contract toward search.
func New(problem *fstrips.Problem, cfg Config, log *zap.Logger) (Heuristic, error) {
	switch cfg.Variant {
	case VariantDirectCRPG, "":
		return NewDirectCRPG(problem, cfg, log)
	case VariantDirectHMax:
		return NewDirectHMax(problem, cfg, log)
	case VariantUnreachedAtom:
		return NewUnreachedAtomRPG(problem, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, cfg.Variant)
	}
}
