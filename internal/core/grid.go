package core

import (
	"errors"
	"fmt"
	"math"

	lvcore "github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"
)

// ErrInvalidEndpoint is returned when a shortest-path query's start or goal
// cell is an obstacle or out of bounds.
var ErrInvalidEndpoint = errors.New("core: start or goal is not a free, in-bounds cell")

// ErrNoPathExists is returned when no free-grid path connects start to goal.
var ErrNoPathExists = errors.New("core: goal is unreachable from start")

// directions enumerates the four cardinal moves, matching the order used by
// the original grid_map.py (N, E, S, W as (dx, dy) offsets).
var directions = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// GridMap is an immutable rectangular occupancy grid. Obstacle[x][y] is true
// when (x, y) is blocked. It is a pure function of the static map: per-goal
// heuristic tables are memoized for the lifetime of the GridMap.
type GridMap struct {
	Obstacle [][]bool
	width    int
	height   int

	heuristics map[Vertex]map[Vertex]int
}

// NewGridMap wraps a rectangular obstacle grid. obstacle[x][y] == true means
// (x, y) is blocked; the slice is not copied, so callers must not mutate it
// afterwards.
func NewGridMap(obstacle [][]bool) *GridMap {
	width := len(obstacle)
	height := 0
	if width > 0 {
		height = len(obstacle[0])
	}
	return &GridMap{
		Obstacle:   obstacle,
		width:      width,
		height:     height,
		heuristics: make(map[Vertex]map[Vertex]int),
	}
}

// Width is the grid's extent along X.
func (g *GridMap) Width() int { return g.width }

// Height is the grid's extent along Y.
func (g *GridMap) Height() int { return g.height }

// InBounds reports whether v lies within the grid's extent.
func (g *GridMap) InBounds(v Vertex) bool {
	return v.X >= 0 && v.X < g.width && v.Y >= 0 && v.Y < g.height
}

// IsFree reports whether v is in bounds and not an obstacle.
func (g *GridMap) IsFree(v Vertex) bool {
	return g.InBounds(v) && !g.Obstacle[v.X][v.Y]
}

// Neighbours returns the cardinal neighbours of v that are in bounds and
// free. It never includes v itself; the low-level planner adds the wait
// self-loop explicitly.
func (g *GridMap) Neighbours(v Vertex) []Vertex {
	var out []Vertex
	for _, d := range directions {
		n := Vertex{X: v.X + d[0], Y: v.Y + d[1]}
		if g.IsFree(n) {
			out = append(out, n)
		}
	}
	return out
}

// freeSubgraph converts every free cell of the grid into an
// unweighted-in-name-only (unit-weight) lvlath graph: one vertex per free
// cell (ID "x,y"), one undirected edge per 4-connected pair of free cells.
func (g *GridMap) freeSubgraph() *lvcore.Graph {
	graph := lvcore.NewGraph(lvcore.WithWeighted())
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			v := Vertex{X: x, Y: y}
			if !g.IsFree(v) {
				continue
			}
			_ = graph.AddVertex(v.String())
			for _, n := range g.Neighbours(v) {
				// Only add each undirected edge once, from the
				// lexicographically smaller endpoint.
				if n.X < v.X || (n.X == v.X && n.Y < v.Y) {
					continue
				}
				_, _ = graph.AddEdge(v.String(), n.String(), 1)
			}
		}
	}
	return graph
}

// Heuristic returns shortest-path distances from every reachable free cell
// to goal, computed by Dijkstra over the free 4-connected subgraph via
// lvlath/dijkstra. Cells that cannot reach goal are absent from the map.
// Results are memoized per goal for the lifetime of the GridMap.
func (g *GridMap) Heuristic(goal Vertex) map[Vertex]int {
	if h, ok := g.heuristics[goal]; ok {
		return h
	}

	h := make(map[Vertex]int)
	if g.IsFree(goal) {
		graph := g.freeSubgraph()
		dist, _, err := dijkstra.Dijkstra(graph, dijkstra.Source(goal.String()))
		if err == nil {
			for x := 0; x < g.width; x++ {
				for y := 0; y < g.height; y++ {
					v := Vertex{X: x, Y: y}
					if !g.IsFree(v) {
						continue
					}
					if d, ok := dist[v.String()]; ok && d != math.MaxInt64 {
						h[v] = int(d)
					}
				}
			}
		}
	}

	g.heuristics[goal] = h
	return h
}

// ShortestPath returns a concrete shortest path from start to goal on the
// free grid, ignoring time and other agents. Used only by external
// collaborators (map loaders, instance tooling), never by the CBS core.
func (g *GridMap) ShortestPath(start, goal Vertex) (Path, int, error) {
	if !g.IsFree(start) || !g.IsFree(goal) {
		return nil, 0, ErrInvalidEndpoint
	}

	graph := g.freeSubgraph()
	dist, prev, err := dijkstra.Dijkstra(graph, dijkstra.Source(start.String()), dijkstra.WithReturnPath())
	if err != nil {
		return nil, 0, err
	}
	d, ok := dist[goal.String()]
	if !ok || d == math.MaxInt64 {
		return nil, 0, ErrNoPathExists
	}

	var reversed Path
	cur := goal.String()
	for cur != "" {
		var x, y int
		if _, err := fmt.Sscanf(cur, "%d,%d", &x, &y); err != nil {
			return nil, 0, err
		}
		reversed = append(reversed, Vertex{X: x, Y: y})
		if cur == start.String() {
			break
		}
		cur = prev[cur]
	}
	path := make(Path, len(reversed))
	for i, v := range reversed {
		path[len(reversed)-1-i] = v
	}
	return path, int(d), nil
}
