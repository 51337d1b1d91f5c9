package rpg

import (
	"go.uber.org/zap"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// UnreachedAtomRPG is the atom-centric relaxed-planning-graph heuristic:
// each layer is built by sweeping the not-yet-achieved atoms and asking
// their potential achievers, via per-effect CSPs, for a support. It is the
// strategy of choice when action schemas are only partially ground, so that
// effects carry constraint problems over their remaining free parameters.
//
// The central performance lever is per-layer memoisation of the effect
// CSPs: within one layer each handler is instantiated at most once,
// failure is sticky, and a successful instantiation is reused across every
// atom the handler might achieve. The caches are scoped to the layer and
// released when it ends.
type UnreachedAtomRPG struct {
	problem   *fstrips.Problem
	handlers  []*EffectHandler
	achievers [][]int
	goal      *GoalChecker
	pruner    ConstraintPruner
	cfg       Config
	log       *zap.Logger
}

// EvalStats instruments one evaluation of the atom-centric heuristic.
type EvalStats struct {
	// Layers is the number of expansion layers that added at least one
	// atom; a final sweep that adds none is not counted.
	Layers int
	// CSPInstantiations counts handler preinstantiations across all
	// swept layers; it never exceeds (Layers+1) × number of handlers.
	CSPInstantiations int
}

// NewUnreachedAtomRPG builds the heuristic over the problem's partially
// ground actions. When the problem carries no lifted actions, the ground
// action table is lifted trivially (zero free parameters per effect) so
// the variant remains usable on fully ground problems.
func NewUnreachedAtomRPG(problem *fstrips.Problem, cfg Config, log *zap.Logger) (*UnreachedAtomRPG, error) {
	if log == nil {
		log = zap.NewNop()
	}
	actions := problem.Lifted
	if len(actions) == 0 {
		actions = liftGround(problem.Ground)
	}
	var handlers []*EffectHandler
	for _, a := range actions {
		for ei := range a.Effects {
			h, err := NewEffectHandler(a, ei, problem.Info, problem.Atoms)
			if err != nil {
				return nil, err
			}
			handlers = append(handlers, h)
		}
	}
	u := &UnreachedAtomRPG{
		problem:   problem,
		handlers:  handlers,
		achievers: BuildAchieversIndex(handlers, problem.Atoms),
		goal:      NewGoalChecker(problem.Goal, problem.StateConstraints, problem.Atoms),
		pruner:    NoopPruner{},
		cfg:       cfg,
		log:       log,
	}
	u.log.Debug("unreached-atom heuristic initialized", zap.Int("effect_handlers", len(handlers)))
	return u, nil
}

// liftGround wraps ground actions as lifted actions without parameters.
func liftGround(ground []*fstrips.GroundAction) []*fstrips.LiftedAction {
	out := make([]*fstrips.LiftedAction, len(ground))
	for i, a := range ground {
		out[i] = &fstrips.LiftedAction{
			ID:           a.ID,
			Name:         a.Name,
			Precondition: a.Precondition,
			Effects:      a.Effects,
			Cost:         a.Cost,
		}
	}
	return out
}

// SetPruner installs a state-constraint pruning hook. Must be called
// before the heuristic is shared across goroutines.
func (u *UnreachedAtomRPG) SetPruner(p ConstraintPruner) {
	if p != nil {
		u.pruner = p
	}
}

// Evaluate computes the heuristic value of a seed state.
func (u *UnreachedAtomRPG) Evaluate(seed *fstrips.State) (int, error) {
	v, _, err := u.evaluate(seed)
	return v, err
}

// EvaluateWithStats is Evaluate plus per-evaluation instrumentation.
func (u *UnreachedAtomRPG) EvaluateWithStats(seed *fstrips.State) (int, EvalStats, error) {
	return u.evaluate(seed)
}

func (u *UnreachedAtomRPG) evaluate(seed *fstrips.State) (int, EvalStats, error) {
	var stats EvalStats

	goalInSeed, err := u.goal.SatisfiedState(seed)
	if err != nil {
		return 0, stats, err
	}
	if goalInSeed {
		return 0, stats, nil
	}

	relaxed := NewRelaxedState(seed, u.problem.Atoms)
	bookkeeping := NewRPGData(seed, u.problem.Atoms)

	var selector ValueSelector
	if u.cfg.UseMinHMaxValueSelector {
		selector = minHMaxSelector(bookkeeping, u.problem.Atoms)
	}

	for {
		// Per-layer CSP caches: cache[h] holds handler h's CSP
		// instantiated against this layer, failed[h] is sticky within
		// the layer. Both are released when the layer ends.
		cache := make([]*EffectCSP, len(u.handlers))
		failed := make([]bool, len(u.handlers))

		for ai := 0; ai < u.problem.Atoms.Size(); ai++ {
			idx := fstrips.AtomIdx(ai)
			if bookkeeping.Achieved(idx) {
				continue
			}
			atom := u.problem.Atoms.Atom(idx)
			for _, hi := range u.achievers[ai] {
				if failed[hi] {
					continue
				}
				if cache[hi] == nil {
					stats.CSPInstantiations++
					csp, ok, err := u.handlers[hi].Preinstantiate(relaxed)
					if err != nil {
						return 0, stats, err
					}
					if !ok {
						failed[hi] = true
						continue
					}
					cache[hi] = csp
				}
				sup, ok, err := u.handlers[hi].FindSupport(atom, cache[hi], relaxed)
				if err != nil {
					return 0, stats, err
				}
				if ok {
					bookkeeping.Add(atom, sup)
					break
				}
			}
		}

		if bookkeeping.NumNovel() == 0 {
			return Unreachable, stats, nil
		}

		relaxed.Accumulate(bookkeeping.NovelAtoms())
		stats.Layers++
		u.log.Debug("rpg layer closed",
			zap.Int("layer", bookkeeping.CurrentLayer()),
			zap.Int("novel_atoms", bookkeeping.NumNovel()),
			zap.Int("csp_instantiations", stats.CSPInstantiations))

		res, err := u.pruner.Prune(relaxed)
		if err != nil {
			return 0, stats, err
		}
		if res == PruneFailure {
			return Unreachable, stats, nil
		}

		causes, ok, err := u.goal.Satisfiable(relaxed, selector)
		if err != nil {
			return 0, stats, err
		}
		if ok {
			extractor := NewRelaxedPlanExtractor(seed, bookkeeping, u.problem.Atoms, u.costOf)
			return extractor.ComputeCost(causes), stats, nil
		}

		if u.cfg.MaxLayers > 0 && bookkeeping.CurrentLayer() >= u.cfg.MaxLayers {
			u.log.Warn("rpg layer cap exceeded", zap.Int("max_layers", u.cfg.MaxLayers))
			return Unreachable, stats, nil
		}
		bookkeeping.AdvanceLayer()
	}
}

func (u *UnreachedAtomRPG) costOf(a fstrips.ActionIdx) int {
	if len(u.problem.Lifted) > 0 {
		return u.problem.Lifted[a].Cost
	}
	return u.problem.Ground[a].Cost
}
