package cbs

import (
	"math/rand"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

// Collision records the earliest collision found between two agents' paths:
// Conflict has one vertex for a vertex collision, or two (u, v, from a1's
// perspective) for an edge collision (a swap across that edge).
type Collision struct {
	T        int
	Conflict []core.Vertex
	A1, A2   int
}

// DetectCollision scans two paths in lockstep and returns the earliest
// vertex or edge conflict, or nil if the paths never collide.
func DetectCollision(a1 int, p1 core.Path, a2 int, p2 core.Path) *Collision {
	maxT := len(p1)
	if len(p2) > maxT {
		maxT = len(p2)
	}

	for t := 0; t < maxT; t++ {
		u, v := p1.At(t), p2.At(t)
		if u == v {
			return &Collision{T: t, Conflict: []core.Vertex{u}, A1: a1, A2: a2}
		}

		uNext, vNext := p1.At(t+1), p2.At(t+1)
		if u == vNext && uNext == v {
			return &Collision{T: t + 1, Conflict: []core.Vertex{u, uNext}, A1: a1, A2: a2}
		}
	}

	return nil
}

// AllCollisions returns the first collision for every unordered pair of
// agents that collides at all.
func AllCollisions(paths []core.Path) []Collision {
	var out []Collision
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if c := DetectCollision(i, paths[i], j, paths[j]); c != nil {
				out = append(out, *c)
			}
		}
	}
	return out
}

// StandardSplitting converts a collision into two negative constraints, one
// per colliding agent.
func StandardSplitting(c Collision) []Constraint {
	if len(c.Conflict) == 1 {
		return []Constraint{
			{Agent: c.A1, Loc: c.Conflict, T: c.T},
			{Agent: c.A2, Loc: c.Conflict, T: c.T},
		}
	}
	u, v := c.Conflict[0], c.Conflict[1]
	return []Constraint{
		{Agent: c.A1, Loc: []core.Vertex{u, v}, T: c.T},
		{Agent: c.A2, Loc: []core.Vertex{v, u}, T: c.T},
	}
}

// DisjointSplitting picks one of the two colliding agents uniformly at
// random (via rng, which callers must seed for reproducibility) and
// returns a mutually exclusive positive/negative constraint pair on that
// single agent.
func DisjointSplitting(c Collision, rng *rand.Rand) []Constraint {
	agent := c.A1
	if rng.Intn(2) == 1 {
		agent = c.A2
	}

	loc := c.Conflict
	if len(loc) == 2 && agent == c.A2 {
		loc = []core.Vertex{c.Conflict[1], c.Conflict[0]}
	}

	return []Constraint{
		{Agent: agent, Loc: loc, T: c.T, Positive: true},
		{Agent: agent, Loc: loc, T: c.T, Positive: false},
	}
}
