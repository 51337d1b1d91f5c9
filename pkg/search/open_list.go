package search

import (
	"container/heap"

	"github.com/gitrdm/gofstrips/pkg/fstrips"
)

// node is one search node: a state plus the path that produced it.
type node struct {
	state  *fstrips.State
	parent *node
	action fstrips.ActionIdx
	h      int
	order  int // generation stamp, the tie-breaker
}

// openList is a binary heap ordered by heuristic value, ties broken by
// generation order so the search is deterministic.
type openList struct {
	nodes []*node
}

func (o *openList) Len() int { return len(o.nodes) }

func (o *openList) Less(i, j int) bool {
	if o.nodes[i].h != o.nodes[j].h {
		return o.nodes[i].h < o.nodes[j].h
	}
	return o.nodes[i].order < o.nodes[j].order
}

func (o *openList) Swap(i, j int) { o.nodes[i], o.nodes[j] = o.nodes[j], o.nodes[i] }

func (o *openList) Push(x any) { o.nodes = append(o.nodes, x.(*node)) }

func (o *openList) Pop() any {
	n := len(o.nodes)
	top := o.nodes[n-1]
	o.nodes[n-1] = nil
	o.nodes = o.nodes[:n-1]
	return top
}

func (o *openList) push(n *node) { heap.Push(o, n) }

func (o *openList) pop() *node { return heap.Pop(o).(*node) }
