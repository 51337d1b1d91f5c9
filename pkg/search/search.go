// Package search provides the forward state-space search that consumes the
// relaxed-planning-graph heuristics: a greedy best-first engine with
// duplicate detection, deterministic tie-breaking, and optional parallel
// evaluation of successor states. Timeouts and cancellation are enforced
// here, between heuristic evaluations, never inside one.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitrdm/gofstrips/internal/parallel"
	"github.com/gitrdm/gofstrips/pkg/fstrips"
	"github.com/gitrdm/gofstrips/pkg/rpg"
)

// ErrNoPlan is returned when the search space is exhausted without
// reaching a goal state.
var ErrNoPlan = errors.New("search: no plan found")

// Stats summarises one search run.
type Stats struct {
	RunID     string
	Expanded  int
	Generated int
	Evaluated int
	DeadEnds  int
}

// Result is a solved search: the plan as a sequence of ground action ids
// applicable from the initial state, plus run statistics.
type Result struct {
	Plan  []fstrips.ActionIdx
	Stats Stats
}

// Engine is a greedy best-first search over a problem's ground actions,
// guided by a heuristic. Engines are single-use per Solve call but hold no
// per-run state themselves, so one engine may serve sequential runs.
type Engine struct {
	problem *fstrips.Problem
	h       rpg.Heuristic
	pool    *parallel.Pool
	log     *zap.Logger
}

// NewEngine builds a search engine. A nil logger is replaced by
// zap.NewNop(); workers > 1 evaluates successor heuristics in parallel,
// each evaluation owning its private relaxed state and bookkeeping.
func NewEngine(problem *fstrips.Problem, h rpg.Heuristic, workers int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{problem: problem, h: h, pool: parallel.NewPool(workers), log: log}
}

// Solve runs the search from the problem's initial state. The context is
// consulted between node expansions; an in-flight heuristic evaluation
// always runs to completion.
func (e *Engine) Solve(ctx context.Context) (Result, error) {
	stats := Stats{RunID: uuid.NewString()}
	e.log.Info("search started", zap.String("run_id", stats.RunID))

	h0, err := e.h.Evaluate(e.problem.Init)
	if err != nil {
		return Result{Stats: stats}, err
	}
	stats.Evaluated++
	if h0 == 0 {
		e.log.Info("initial state satisfies the goal", zap.String("run_id", stats.RunID))
		return Result{Plan: []fstrips.ActionIdx{}, Stats: stats}, nil
	}
	if h0 == rpg.Unreachable {
		return Result{Stats: stats}, fmt.Errorf("%w: initial state is a dead end", ErrNoPlan)
	}

	open := &openList{}
	open.push(&node{state: e.problem.Init, action: -1, h: h0})
	closed := map[uint64][]*fstrips.State{e.problem.Init.Hash(): {e.problem.Init}}
	generation := 0

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Stats: stats}, err
		}
		current := open.pop()
		stats.Expanded++

		succs, err := e.expand(current.state)
		if err != nil {
			return Result{Stats: stats}, err
		}
		fresh := succs[:0]
		for _, s := range succs {
			if seen(closed, s.state) {
				continue
			}
			closed[s.state.Hash()] = append(closed[s.state.Hash()], s.state)
			fresh = append(fresh, s)
		}
		stats.Generated += len(fresh)

		values := make([]int, len(fresh))
		goals := make([]bool, len(fresh))
		err = e.pool.Map(ctx, len(fresh), func(_ context.Context, i int) error {
			ok, err := e.problem.GoalSatisfied(fresh[i].state)
			if err != nil {
				return err
			}
			if ok {
				goals[i] = true
				return nil
			}
			v, err := e.h.Evaluate(fresh[i].state)
			values[i] = v
			return err
		})
		if err != nil && !errors.Is(err, parallel.ErrNoWork) {
			return Result{Stats: stats}, err
		}
		stats.Evaluated += len(fresh)

		for i, s := range fresh {
			if goals[i] {
				plan := extractPlan(&node{state: s.state, parent: current, action: s.action})
				e.log.Info("plan found",
					zap.String("run_id", stats.RunID),
					zap.Int("length", len(plan)),
					zap.Int("expanded", stats.Expanded),
					zap.Int("generated", stats.Generated))
				return Result{Plan: plan, Stats: stats}, nil
			}
			if values[i] == rpg.Unreachable {
				stats.DeadEnds++
				continue
			}
			generation++
			open.push(&node{state: s.state, parent: current, action: s.action, h: values[i], order: generation})
		}
	}
	return Result{Stats: stats}, ErrNoPlan
}

// successor pairs a generated state with the action that produced it.
type successor struct {
	action fstrips.ActionIdx
	state  *fstrips.State
}

// expand generates the applicable successors of a state in ascending
// action order.
func (e *Engine) expand(s *fstrips.State) ([]successor, error) {
	var out []successor
	for _, a := range e.problem.Ground {
		ok, err := a.Applicable(s)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		changes, err := a.Apply(s)
		if err != nil {
			return nil, err
		}
		out = append(out, successor{action: a.ID, state: s.Successor(changes)})
	}
	return out, nil
}

func seen(closed map[uint64][]*fstrips.State, s *fstrips.State) bool {
	for _, have := range closed[s.Hash()] {
		if have.Equal(s) {
			return true
		}
	}
	return false
}

func extractPlan(goal *node) []fstrips.ActionIdx {
	var plan []fstrips.ActionIdx
	for n := goal; n != nil && n.action >= 0; n = n.parent {
		plan = append(plan, n.action)
	}
	for i, j := 0, len(plan)-1; i < j; i, j = i+1, j-1 {
		plan[i], plan[j] = plan[j], plan[i]
	}
	return plan
}

// Validate replays a plan from the initial state, checking applicability
// at each step, and reports whether the final state satisfies the goal.
func Validate(problem *fstrips.Problem, plan []fstrips.ActionIdx) (bool, error) {
	s := problem.Init
	for _, idx := range plan {
		if int(idx) < 0 || int(idx) >= len(problem.Ground) {
			return false, fmt.Errorf("plan references unknown action %d", idx)
		}
		a := problem.Ground[idx]
		ok, err := a.Applicable(s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("action %q not applicable at step", a.Name)
		}
		changes, err := a.Apply(s)
		if err != nil {
			return false, err
		}
		s = s.Successor(changes)
	}
	return problem.GoalSatisfied(s)
}
