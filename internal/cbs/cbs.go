package cbs

import (
	"container/heap"
	"errors"
	"math/rand"
	"strconv"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

// ErrNoRootSolution is returned when at least one agent has no path under
// the empty constraint set; this is fatal and surfaced to the caller.
var ErrNoRootSolution = errors.New("cbs: no path exists for at least one agent under no constraints")

// node is a conflict-tree node: an immutable snapshot of accumulated
// constraints, each agent's current path, and the first collision per
// colliding pair. Children copy and extend their parent.
type node struct {
	constraints map[string]Constraint
	paths       []core.Path
	collisions  []Collision
	cost        int
	generation  int
	index       int
}

// nodeHeap orders conflict-tree nodes by (cost, |collisions|, generation):
// lower cost first, fewer collisions as a tie-break, insertion order as
// the final tie-break for determinism.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if len(h[i].collisions) != len(h[j].collisions) {
		return len(h[i].collisions) < len(h[j].collisions)
	}
	return h[i].generation < h[j].generation
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// Solver runs Conflict-Based Search over a static grid for a fixed set of
// agent starts and goals.
type Solver struct {
	grid   *core.GridMap
	starts []core.Vertex
	goals  []core.Vertex

	disjoint bool
	rng      *rand.Rand

	heuristics []map[core.Vertex]int
	cache      map[string]core.Path // "<agent>|<fingerprint>" -> path

	NumExpanded  int
	NumGenerated int
}

// NewSolver builds a CBS solver for the given instance. rng seeds the
// colliding-agent choice in disjoint splitting; passing nil uses a source
// with the fixed seed 1.
func NewSolver(grid *core.GridMap, starts, goals []core.Vertex, disjoint bool, rng *rand.Rand) *Solver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	heuristics := make([]map[core.Vertex]int, len(goals))
	for i, g := range goals {
		heuristics[i] = grid.Heuristic(g)
	}
	return &Solver{
		grid:       grid,
		starts:     starts,
		goals:      goals,
		disjoint:   disjoint,
		rng:        rng,
		heuristics: heuristics,
		cache:      make(map[string]core.Path),
	}
}

// Solve is the package-level convenience wrapper around NewSolver+Run.
func Solve(grid *core.GridMap, starts, goals []core.Vertex, disjoint bool, rng *rand.Rand) ([]core.Path, bool, error) {
	s := NewSolver(grid, starts, goals, disjoint, rng)
	return s.Run()
}

// planAgents replans every agent in agents under constraints, consulting
// and populating the low-level cache. Returns ok=false if any agent has
// no path.
func (s *Solver) planAgents(agents []int, constraints map[string]Constraint, paths []core.Path) bool {
	fp := fingerprint(constraints)
	list := constraintList(constraints)

	for _, a := range agents {
		cacheKey := strconv.Itoa(a) + "|" + fp
		if cached, ok := s.cache[cacheKey]; ok {
			paths[a] = cached
			continue
		}
		path, ok := PlanSingle(s.grid, s.starts[a], s.goals[a], s.heuristics[a], a, list)
		if !ok {
			return false
		}
		paths[a] = path
		s.cache[cacheKey] = path
	}
	return true
}

func constraintList(constraints map[string]Constraint) []Constraint {
	out := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		out = append(out, c)
	}
	return out
}

// violatingAgents returns the agents other than c.Agent whose current path
// violates the positive constraint c.
func violatingAgents(c Constraint, paths []core.Path) []int {
	var out []int
	if len(c.Loc) == 1 {
		u := c.Loc[0]
		for i, p := range paths {
			if i == c.Agent {
				continue
			}
			if p.At(c.T) == u {
				out = append(out, i)
			}
		}
		return out
	}

	u, v := c.Loc[0], c.Loc[1]
	for i, p := range paths {
		if i == c.Agent {
			continue
		}
		t := c.T - 1
		if t < 0 {
			t = 0
		}
		prev, curr := p.At(t), p.At(c.T)
		if (prev == u && curr == v) || (prev == v && curr == u) {
			out = append(out, i)
		}
	}
	return out
}

// pushChild forms child from parent plus constraint c, replans the
// affected agent(s), and pushes it if the solve succeeds and its state
// (paths plus constraint set) hasn't been seen before.
func (s *Solver) pushChild(parent *node, c Constraint, closed map[string]bool, open *nodeHeap) {
	constraints := make(map[string]Constraint, len(parent.constraints)+1)
	for k, v := range parent.constraints {
		constraints[k] = v
	}
	constraints[c.key()+"#"+strconv.Itoa(c.Agent)+"#"+boolKey(c.Positive)] = c

	paths := make([]core.Path, len(parent.paths))
	copy(paths, parent.paths)

	if !s.planAgents([]int{c.Agent}, constraints, paths) {
		return
	}

	if c.Positive {
		violators := violatingAgents(c, paths)
		if len(violators) > 0 && !s.planAgents(violators, constraints, paths) {
			return
		}
	}

	key := stateKey(paths, constraints)
	if closed[key] {
		return
	}
	closed[key] = true

	child := &node{
		constraints: constraints,
		paths:       paths,
		collisions:  AllCollisions(paths),
		cost:        core.SumOfCost(paths),
		generation:  s.NumGenerated,
	}
	s.NumGenerated++
	heap.Push(open, child)
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Run executes the CBS main loop. It returns the conflict-free paths and
// solved=true on success. If the open list empties without finding a
// conflict-free node, it returns the root's best-effort (still colliding)
// paths with solved=false and a nil error, a non-fatal outcome the caller
// is expected to branch on rather than treat as failure.
func (s *Solver) Run() ([]core.Path, bool, error) {
	rootPaths := make([]core.Path, len(s.goals))
	rootConstraints := map[string]Constraint{}
	agents := make([]int, len(s.goals))
	for i := range agents {
		agents[i] = i
	}
	if !s.planAgents(agents, rootConstraints, rootPaths) {
		return nil, false, ErrNoRootSolution
	}

	root := &node{
		constraints: rootConstraints,
		paths:       rootPaths,
		collisions:  AllCollisions(rootPaths),
		cost:        core.SumOfCost(rootPaths),
		generation:  0,
	}
	s.NumGenerated = 1

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, root)

	closed := map[string]bool{stateKey(root.paths, root.constraints): true}

	for open.Len() > 0 {
		n := heap.Pop(open).(*node)
		s.NumExpanded++

		if len(n.collisions) == 0 {
			return n.paths, true, nil
		}

		// Pick the last-added collision (LIFO on insertion/detection order).
		picked := n.collisions[len(n.collisions)-1]

		var constraints []Constraint
		if s.disjoint {
			constraints = DisjointSplitting(picked, s.rng)
		} else {
			constraints = StandardSplitting(picked)
		}

		for _, c := range constraints {
			s.pushChild(n, c, closed, open)
		}
	}

	return root.paths, false, nil
}
