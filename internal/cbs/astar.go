package cbs

import (
	"container/heap"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

// stState is a (vertex, timestep) pair: a node in the space-time product
// graph the low-level planner searches.
type stState struct {
	v core.Vertex
	t int
}

// stNode is a space-time A* search node, linked to its parent for path
// reconstruction by pointer chasing.
type stNode struct {
	state  stState
	g      int
	h      int
	parent *stNode
}

func (n *stNode) f() int { return n.g + n.h }

// stHeap orders search nodes by (f, h, location) for deterministic
// tie-breaking.
type stHeap []*stNode

func (h stHeap) Len() int { return len(h) }
func (h stHeap) Less(i, j int) bool {
	if h[i].f() != h[j].f() {
		return h[i].f() < h[j].f()
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	vi, vj := h[i].state.v, h[j].state.v
	if vi.X != vj.X {
		return vi.X < vj.X
	}
	return vi.Y < vj.Y
}
func (h stHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *stHeap) Push(x any)   { *h = append(*h, x.(*stNode)) }
func (h *stHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// candidates returns curr's cardinal neighbours plus the wait self-loop.
func candidates(grid *core.GridMap, curr core.Vertex) []core.Vertex {
	out := grid.Neighbours(curr)
	return append(out, curr)
}

// generateChildren produces the successors of curr at t+1: if any candidate
// is positively constrained, it is the only successor (the positive
// constraint forces the move); otherwise every candidate not negatively
// constrained is generated.
func generateChildren(grid *core.GridMap, h map[core.Vertex]int, curr *stNode, table *ConstraintTable) []*stNode {
	nextT := curr.t() + 1
	cands := candidates(grid, curr.state.v)

	for _, next := range cands {
		if table.IsPositivelyConstrained(curr.state.v, next, nextT) {
			hv, ok := h[next]
			if !ok {
				return nil
			}
			return []*stNode{{
				state:  stState{v: next, t: nextT},
				g:      curr.g + 1,
				h:      hv,
				parent: curr,
			}}
		}
	}

	var children []*stNode
	for _, next := range cands {
		if table.IsNegativelyConstrained(curr.state.v, next, nextT) {
			continue
		}
		hv, ok := h[next]
		if !ok {
			continue
		}
		children = append(children, &stNode{
			state:  stState{v: next, t: nextT},
			g:      curr.g + 1,
			h:      hv,
			parent: curr,
		})
	}
	return children
}

func (n *stNode) t() int { return n.state.t }

// solutionFound applies the goal test: curr must be at goal, and no future
// negative vertex constraint on goal may exist beyond curr.t.
func solutionFound(curr *stNode, goal core.Vertex, table *ConstraintTable, maxNegT int) bool {
	if curr.state.v != goal {
		return false
	}
	goalKey := locKey(goal)
	for t := curr.t() + 1; t <= maxNegT; t++ {
		if table.NegativeAt(t)[goalKey] {
			return false
		}
	}
	return true
}

// maxNegativeTimestep returns the greatest timestep with any negative
// constraint, used to bound the future-constraint scan in solutionFound.
func maxNegativeTimestep(table *ConstraintTable) int {
	max := -1
	for t := range table.negative {
		if t > max {
			max = t
		}
	}
	return max
}

// reconstructPath walks parent pointers from goalNode back to the root and
// reverses the result.
func reconstructPath(goalNode *stNode) core.Path {
	var rev core.Path
	for n := goalNode; n != nil; n = n.parent {
		rev = append(rev, n.state.v)
	}
	path := make(core.Path, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// PlanSingle runs space-time A* for a single agent under the given global
// constraint set, returning a shortest path that satisfies every
// constraint pertaining to this agent, or (nil, false) if none exists.
// h must be the heuristic table for goal (core.GridMap.Heuristic).
func PlanSingle(grid *core.GridMap, start, goal core.Vertex, h map[core.Vertex]int, agent int, constraints []Constraint) (core.Path, bool) {
	table := NewConstraintTable(constraints, agent)
	maxNegT := maxNegativeTimestep(table)

	startH, ok := h[start]
	if !ok {
		return nil, false
	}

	open := &stHeap{}
	heap.Init(open)
	heap.Push(open, &stNode{state: stState{v: start, t: 0}, g: 0, h: startH})

	best := make(map[stState]int)

	for open.Len() > 0 {
		curr := heap.Pop(open).(*stNode)

		if g, seen := best[curr.state]; seen && g <= curr.g {
			continue
		}
		best[curr.state] = curr.g

		if solutionFound(curr, goal, table, maxNegT) {
			return reconstructPath(curr), true
		}

		for _, child := range generateChildren(grid, h, curr, table) {
			heap.Push(open, child)
		}
	}

	return nil, false
}
