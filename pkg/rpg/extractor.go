package rpg

import (
	"sort"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// RelaxedPlanExtractor performs the backward sweep over the bookkeeping:
// starting from the goal's witness atoms it resolves each atom's support,
// collecting a deduplicated set of supporting actions whose summed cost is
// the heuristic value. Extraction cost is linear in the number of enqueued
// atoms; each atom is enqueued at most once.
//
// An extractor is created at the moment a goal layer is detected and may be
// retained by the caller for inspection of the chosen action set.
type RelaxedPlanExtractor struct {
	seed   *fstrips.State
	g      *RPGData
	atoms  *fstrips.AtomIndex
	costOf func(fstrips.ActionIdx) int

	chosen   map[string]fstrips.ActionIdx
	enqueued []bool
}

// NewRelaxedPlanExtractor builds an extractor over a finished goal layer.
// costOf maps action ids to costs; pass nil for unit costs.
func NewRelaxedPlanExtractor(seed *fstrips.State, g *RPGData, atoms *fstrips.AtomIndex, costOf func(fstrips.ActionIdx) int) *RelaxedPlanExtractor {
	if costOf == nil {
		costOf = func(fstrips.ActionIdx) int { return 1 }
	}
	return &RelaxedPlanExtractor{
		seed:     seed,
		g:        g,
		atoms:    atoms,
		costOf:   costOf,
		chosen:   make(map[string]fstrips.ActionIdx),
		enqueued: make([]bool, atoms.Size()),
	}
}

// ComputeCost runs the backward sweep from the goal causes and returns the
// summed cost of the chosen action set.
func (e *RelaxedPlanExtractor) ComputeCost(causes []fstrips.AtomIdx) int {
	maxLayer := 0
	pending := make([][]fstrips.AtomIdx, e.g.CurrentLayer()+1)
	enqueue := func(i fstrips.AtomIdx) {
		if e.enqueued[i] {
			return
		}
		e.enqueued[i] = true
		l := e.g.Layer(i)
		if l <= 0 {
			return // satisfied by the seed state
		}
		pending[l] = append(pending[l], i)
		if l > maxLayer {
			maxLayer = l
		}
	}
	for _, i := range causes {
		enqueue(i)
	}
	// Witness atoms sit in strictly earlier layers, so buckets never grow
	// while their own layer is being drained.
	for l := maxLayer; l >= 1; l-- {
		for k := 0; k < len(pending[l]); k++ {
			i := pending[l][k]
			if e.seed.Contains(e.atoms.Atom(i)) {
				continue
			}
			sup := e.g.Support(i)
			e.chosen[sup.instanceKey()] = sup.Action
			for _, w := range sup.Witness {
				enqueue(w)
			}
		}
	}
	cost := 0
	for _, a := range e.chosen {
		cost += e.costOf(a)
	}
	return cost
}

// SelectedActions returns the chosen plan set in ascending action order,
// one entry per chosen action instance.
func (e *RelaxedPlanExtractor) SelectedActions() []fstrips.ActionIdx {
	out := make([]fstrips.ActionIdx, 0, len(e.chosen))
	for _, a := range e.chosen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
