package rpg

import (
	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// BuildAchieversIndex maps every atom index to the effect handlers whose
// affected state variable matches the atom's variable. The mapping is a
// deliberate over-approximation: a handler listed for an atom may still
// fail to produce it once its CSP is solved, but a handler not listed
// never can, so the atom-centric sweep only spends CSP work where it might
// pay off.
func BuildAchieversIndex(handlers []*EffectHandler, atoms *fstrips.AtomIndex) [][]int {
	index := make([][]int, atoms.Size())
	for hi, h := range handlers {
		for _, v := range h.AffectedVariables() {
			for _, ai := range atoms.VariableAtoms(v) {
				index[ai] = append(index[ai], hi)
			}
		}
	}
	return index
}
