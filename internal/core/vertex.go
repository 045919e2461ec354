// Package core defines the grid and path primitives the CBS solver runs on.
package core

import "fmt"

// Vertex identifies a grid cell by its (X, Y) coordinates.
type Vertex struct {
	X, Y int
}

// String renders a vertex as "x,y", the canonical form used for map keys
// and for lvlath graph vertex IDs.
func (v Vertex) String() string {
	return fmt.Sprintf("%d,%d", v.X, v.Y)
}

// Edge is an ordered pair of adjacent vertices; direction matters for edge
// constraints, which distinguish the traversal direction.
type Edge struct {
	From, To Vertex
}

// Path is a time-indexed sequence of vertices: Path[t] is the agent's
// location at timestep t. An agent that reaches its goal before the end of
// the path is understood to wait there for every t beyond len(Path)-1.
type Path []Vertex

// At returns the agent's location at timestep t, clamping to the final
// vertex once t reaches or exceeds the path length ("wait at goal").
func (p Path) At(t int) Vertex {
	if t < len(p) {
		return p[t]
	}
	return p[len(p)-1]
}

// Cost is the number of edges in the path (its sum-of-costs contribution).
func (p Path) Cost() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// SumOfCost sums Cost() over every agent's path.
func SumOfCost(paths []Path) int {
	total := 0
	for _, p := range paths {
		total += p.Cost()
	}
	return total
}
