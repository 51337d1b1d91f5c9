package rpg

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// DirectCRPG is the action-centric relaxed-planning-graph heuristic: each
// layer is built by sweeping every whitelisted ground action through the
// graph, and the heuristic value is the cost of a relaxed plan extracted
// backwards from the goal's witness atoms.
//
// The value is immutable after construction and safe for concurrent
// evaluations; all per-evaluation state is local to each call.
type DirectCRPG struct {
	problem  *fstrips.Problem
	managers []*ActionManager
	goal     *GoalChecker
	pruner   ConstraintPruner
	cfg      Config
	log      *zap.Logger

	all []fstrips.ActionIdx
}

// NewDirectCRPG builds the heuristic over the problem's ground actions.
// A nil logger is replaced by zap.NewNop().
func NewDirectCRPG(problem *fstrips.Problem, cfg Config, log *zap.Logger) (*DirectCRPG, error) {
	if log == nil {
		log = zap.NewNop()
	}
	managers := make([]*ActionManager, len(problem.Ground))
	all := make([]fstrips.ActionIdx, len(problem.Ground))
	for i, a := range problem.Ground {
		m, err := NewActionManager(a, problem.Atoms)
		if err != nil {
			return nil, err
		}
		managers[i] = m
		all[i] = fstrips.ActionIdx(i)
	}
	h := &DirectCRPG{
		problem:  problem,
		managers: managers,
		goal:     NewGoalChecker(problem.Goal, problem.StateConstraints, problem.Atoms),
		pruner:   NoopPruner{},
		cfg:      cfg,
		log:      log,
	}
	h.all = all
	h.log.Debug("relaxed plan heuristic initialized", zap.Int("ground_actions", len(managers)))
	return h, nil
}

// SetPruner installs a state-constraint pruning hook. Must be called
// before the heuristic is shared across goroutines.
func (h *DirectCRPG) SetPruner(p ConstraintPruner) {
	if p != nil {
		h.pruner = p
	}
}

// Evaluate computes the heuristic value of a seed state over the full
// action set.
func (h *DirectCRPG) Evaluate(seed *fstrips.State) (int, error) {
	v, _, err := h.evaluate(seed, h.all, h.scoreCRPG)
	return v, err
}

// EvaluateWhitelist computes the heuristic value with the expansion
// restricted to the whitelisted ground actions.
func (h *DirectCRPG) EvaluateWhitelist(seed *fstrips.State, whitelist []fstrips.ActionIdx) (int, error) {
	v, _, err := h.evaluate(seed, whitelist, h.scoreCRPG)
	return v, err
}

// EvaluatePlan is Evaluate plus the extracted relaxed plan, in ascending
// action order. The plan is nil when the seed already satisfies the goal
// or when the goal is unreachable.
func (h *DirectCRPG) EvaluatePlan(seed *fstrips.State) (int, []fstrips.ActionIdx, error) {
	return h.evaluate(seed, h.all, h.scoreCRPG)
}

// scorer computes the heuristic value once a layer has been absorbed, or
// reports that the goal is not yet covered.
type scorer func(seed *fstrips.State, r *RelaxedState, g *RPGData) (int, []fstrips.ActionIdx, bool, error)

// scoreCRPG extracts a relaxed plan when the goal is satisfiable in R.
func (h *DirectCRPG) scoreCRPG(seed *fstrips.State, r *RelaxedState, g *RPGData) (int, []fstrips.ActionIdx, bool, error) {
	var sel ValueSelector
	if h.cfg.UseMinHMaxValueSelector {
		sel = minHMaxSelector(g, h.problem.Atoms)
	}
	causes, ok, err := h.goal.Satisfiable(r, sel)
	if err != nil || !ok {
		return 0, nil, false, err
	}
	extractor := NewRelaxedPlanExtractor(seed, g, h.problem.Atoms, h.costOf)
	cost := extractor.ComputeCost(causes)
	return cost, extractor.SelectedActions(), true, nil
}

func (h *DirectCRPG) costOf(a fstrips.ActionIdx) int {
	return h.problem.Ground[a].Cost
}

// evaluate is the main loop: at each iteration one more graph layer is
// built, until no new atoms are achieved or a goal layer is reached.
func (h *DirectCRPG) evaluate(seed *fstrips.State, whitelist []fstrips.ActionIdx, score scorer) (int, []fstrips.ActionIdx, error) {
	goalInSeed, err := h.goal.SatisfiedState(seed)
	if err != nil {
		return 0, nil, err
	}
	if goalInSeed {
		return 0, nil, nil
	}

	relaxed := NewRelaxedState(seed, h.problem.Atoms)
	bookkeeping := NewRPGData(seed, h.problem.Atoms)

	// The sweep visits actions in ascending index order so that
	// same-layer support ties resolve deterministically.
	sweep := append([]fstrips.ActionIdx(nil), whitelist...)
	sort.Slice(sweep, func(i, j int) bool { return sweep[i] < sweep[j] })

	for {
		for _, idx := range sweep {
			if err := h.managers[idx].Process(relaxed, bookkeeping); err != nil {
				return 0, nil, err
			}
		}

		if bookkeeping.NumNovel() == 0 {
			// Fixpoint without covering the goal: no relaxed plan exists.
			return Unreachable, nil, nil
		}

		relaxed.Accumulate(bookkeeping.NovelAtoms())
		h.log.Debug("rpg layer closed",
			zap.Int("layer", bookkeeping.CurrentLayer()),
			zap.Int("novel_atoms", bookkeeping.NumNovel()),
			zap.Int("reachable_atoms", relaxed.NumAtoms()))

		res, err := h.pruner.Prune(relaxed)
		if err != nil {
			return 0, nil, err
		}
		if res == PruneFailure {
			return Unreachable, nil, nil
		}

		if v, plan, done, err := score(seed, relaxed, bookkeeping); err != nil {
			return 0, nil, err
		} else if done {
			return v, plan, nil
		}

		if h.cfg.MaxLayers > 0 && bookkeeping.CurrentLayer() >= h.cfg.MaxLayers {
			h.log.Warn("rpg layer cap exceeded", zap.Int("max_layers", h.cfg.MaxLayers))
			return Unreachable, nil, nil
		}
		bookkeeping.AdvanceLayer()
	}
}

// DirectHMax shares the action-centric expansion with DirectCRPG but
// scores by the index of the first layer in which the goal becomes
// satisfiable, the classical h_max estimate.
type DirectHMax struct {
	*DirectCRPG
}

// NewDirectHMax builds the layer-index variant.
func NewDirectHMax(problem *fstrips.Problem, cfg Config, log *zap.Logger) (*DirectHMax, error) {
	base, err := NewDirectCRPG(problem, cfg, log)
	if err != nil {
		return nil, err
	}
	return &DirectHMax{DirectCRPG: base}, nil
}

// Evaluate computes the h_max value of a seed state.
func (h *DirectHMax) Evaluate(seed *fstrips.State) (int, error) {
	v, _, err := h.evaluate(seed, h.all, h.scoreHMax)
	return v, err
}

// EvaluateWhitelist computes the h_max value over a restricted action set.
func (h *DirectHMax) EvaluateWhitelist(seed *fstrips.State, whitelist []fstrips.ActionIdx) (int, error) {
	v, _, err := h.evaluate(seed, whitelist, h.scoreHMax)
	return v, err
}

func (h *DirectHMax) scoreHMax(_ *fstrips.State, r *RelaxedState, g *RPGData) (int, []fstrips.ActionIdx, bool, error) {
	_, ok, err := h.goal.Satisfiable(r, nil)
	if err != nil || !ok {
		return 0, nil, false, err
	}
	return g.CurrentLayer(), nil, true, nil
}
