package rpg

import (
	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// NoLayer marks an atom that has not yet been reached in the graph.
const NoLayer = -1

// Support records how an atom was first achieved: the achieving action and
// the witness set of precondition atoms, all of which were reachable in
// strictly earlier layers. For supports found by the atom-centric strategy
// on partially ground actions, Params carries the parameter values of the
// achieving instantiation; distinct instantiations of one schema count as
// distinct actions during extraction.
type Support struct {
	Action  fstrips.ActionIdx
	Params  []fstrips.ObjectIdx
	Witness []fstrips.AtomIdx
}

// instanceKey identifies the achieving action instance for deduplication
// in the extractor's chosen plan set.
func (s Support) instanceKey() string {
	key := make([]byte, 0, 4+4*len(s.Params))
	key = appendInt(key, int(s.Action))
	for _, p := range s.Params {
		key = appendInt(key, int(p))
	}
	return string(key)
}

func appendInt(b []byte, v int) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// RPGData is the per-evaluation bookkeeping of the relaxed planning graph:
// flat arrays, addressed by atom index, recording each atom's first
// achieving layer and one concrete support, plus the in-progress layer's
// novel atoms. Atoms and actions are referred to by integer id exclusively,
// which keeps the graph a pair of flat arrays instead of a linked
// structure.
//
// First-achiever wins: once an atom has a layer and a support, later
// inductions never overwrite them. Within a single layer, ties between
// candidate supports are broken by the order in which achievers are
// processed, which both expansion strategies keep ascending in action
// index; plans extracted from the same bookkeeping are therefore
// deterministic.
type RPGData struct {
	atoms    *fstrips.AtomIndex
	layer    []int
	support  []Support
	current  int
	novel    []fstrips.Atom
	novelIdx []fstrips.AtomIdx
}

// NewRPGData initialises bookkeeping from a seed state: every atom the
// seed contains sits at layer 0, and the first expansion sweep will label
// its novel atoms with layer 1.
func NewRPGData(seed *fstrips.State, atoms *fstrips.AtomIndex) *RPGData {
	g := &RPGData{
		atoms:   atoms,
		layer:   make([]int, atoms.Size()),
		support: make([]Support, atoms.Size()),
		current: 1,
	}
	for i := range g.layer {
		g.layer[i] = NoLayer
	}
	for _, a := range seed.Atoms() {
		if i, ok := atoms.Index(a); ok {
			g.layer[i] = 0
		}
	}
	return g
}

// CurrentLayer returns the index of the layer currently being built.
func (g *RPGData) CurrentLayer() int { return g.current }

// Layer returns the first achieving layer of an atom, or NoLayer.
func (g *RPGData) Layer(i fstrips.AtomIdx) int { return g.layer[i] }

// Achieved reports whether the atom has been reached, the in-progress
// layer included.
func (g *RPGData) Achieved(i fstrips.AtomIdx) bool { return g.layer[i] != NoLayer }

// Support returns the recorded support of an achieved atom. Seed atoms
// (layer 0) have an empty support.
func (g *RPGData) Support(i fstrips.AtomIdx) Support { return g.support[i] }

// Add records an atom as novel in the current layer with the given
// support, unless the atom was already achieved, in which case the earlier
// record wins and Add reports false.
func (g *RPGData) Add(a fstrips.Atom, sup Support) bool {
	i, ok := g.atoms.Index(a)
	if !ok || g.layer[i] != NoLayer {
		return false
	}
	g.layer[i] = g.current
	g.support[i] = sup
	g.novel = append(g.novel, a)
	g.novelIdx = append(g.novelIdx, i)
	return true
}

// NumNovel returns the number of atoms added in the current layer so far.
func (g *RPGData) NumNovel() int { return len(g.novel) }

// NovelAtoms returns the atoms added in the current layer. The slice is
// reused across layers; callers absorb it before advancing.
func (g *RPGData) NovelAtoms() []fstrips.Atom { return g.novel }

// NovelIndices returns the dense indices of the current layer's atoms.
func (g *RPGData) NovelIndices() []fstrips.AtomIdx { return g.novelIdx }

// AdvanceLayer closes the current layer and opens the next one.
func (g *RPGData) AdvanceLayer() {
	g.current++
	g.novel = g.novel[:0]
	g.novelIdx = g.novelIdx[:0]
}
