package cbs

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

func TestDetectCollisionVertex(t *testing.T) {
	p1 := core.Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}
	p2 := core.Path{{X: 0, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 2}}

	c := DetectCollision(0, p1, 1, p2)
	if c == nil {
		t.Fatal("expected a vertex collision at (0,2), t=2, got none")
	}
	if c.T != 2 || len(c.Conflict) != 1 || c.Conflict[0] != (core.Vertex{X: 0, Y: 2}) {
		t.Errorf("collision = %+v, want T=2, Conflict=[(0,2)]", c)
	}
}

func TestDetectCollisionEdgeSwap(t *testing.T) {
	p1 := core.Path{{X: 0, Y: 0}, {X: 0, Y: 1}}
	p2 := core.Path{{X: 0, Y: 1}, {X: 0, Y: 0}}

	c := DetectCollision(0, p1, 1, p2)
	if c == nil {
		t.Fatal("expected an edge collision, got none")
	}
	if c.T != 1 || len(c.Conflict) != 2 {
		t.Errorf("collision = %+v, want T=1, a 2-vertex edge conflict", c)
	}
	if c.Conflict[0] != (core.Vertex{X: 0, Y: 0}) || c.Conflict[1] != (core.Vertex{X: 0, Y: 1}) {
		t.Errorf("collision conflict = %v, want [(0,0),(0,1)] (a1's direction)", c.Conflict)
	}
}

func TestDetectCollisionNone(t *testing.T) {
	p1 := core.Path{{X: 0, Y: 0}, {X: 0, Y: 1}}
	p2 := core.Path{{X: 1, Y: 0}, {X: 1, Y: 1}}

	if c := DetectCollision(0, p1, 1, p2); c != nil {
		t.Errorf("expected no collision between disjoint paths, got %+v", c)
	}
}

func TestAllCollisions(t *testing.T) {
	paths := []core.Path{
		{{X: 0, Y: 0}, {X: 0, Y: 1}},
		{{X: 0, Y: 1}, {X: 0, Y: 0}},
		{{X: 5, Y: 5}, {X: 5, Y: 6}},
	}
	got := AllCollisions(paths)
	if len(got) != 1 {
		t.Fatalf("expected exactly one colliding pair, got %d: %+v", len(got), got)
	}
	if got[0].A1 != 0 || got[0].A2 != 1 {
		t.Errorf("collision pair = (%d,%d), want (0,1)", got[0].A1, got[0].A2)
	}
}

func TestStandardSplittingVertex(t *testing.T) {
	c := Collision{T: 2, Conflict: []core.Vertex{{X: 0, Y: 2}}, A1: 0, A2: 1}
	cs := StandardSplitting(c)
	if len(cs) != 2 {
		t.Fatalf("StandardSplitting should yield 2 constraints, got %d", len(cs))
	}
	for _, want := range []struct {
		agent int
	}{{0}, {1}} {
		found := false
		for _, got := range cs {
			if got.Agent == want.agent && !got.Positive && got.T == 2 {
				found = true
			}
		}
		if !found {
			t.Errorf("missing negative vertex constraint for agent %d", want.agent)
		}
	}
}

func TestStandardSplittingEdge(t *testing.T) {
	u, v := core.Vertex{X: 0, Y: 0}, core.Vertex{X: 0, Y: 1}
	c := Collision{T: 1, Conflict: []core.Vertex{u, v}, A1: 0, A2: 1}
	cs := StandardSplitting(c)
	if len(cs) != 2 {
		t.Fatalf("StandardSplitting should yield 2 constraints, got %d", len(cs))
	}
	if cs[0].Agent != 0 || cs[0].Loc[0] != u || cs[0].Loc[1] != v {
		t.Errorf("agent 0 constraint = %+v, want edge (u,v)", cs[0])
	}
	if cs[1].Agent != 1 || cs[1].Loc[0] != v || cs[1].Loc[1] != u {
		t.Errorf("agent 1 constraint = %+v, want the reversed edge (v,u)", cs[1])
	}
}

func TestDisjointSplittingPicksOneAgent(t *testing.T) {
	u, v := core.Vertex{X: 0, Y: 0}, core.Vertex{X: 0, Y: 1}
	c := Collision{T: 1, Conflict: []core.Vertex{u, v}, A1: 0, A2: 1}

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		cs := DisjointSplitting(c, rng)
		if len(cs) != 2 {
			t.Fatalf("DisjointSplitting should yield 2 constraints, got %d", len(cs))
		}
		if cs[0].Agent != cs[1].Agent {
			t.Fatalf("both constraints should target the same agent, got %d and %d", cs[0].Agent, cs[1].Agent)
		}
		if cs[0].Agent != c.A1 && cs[0].Agent != c.A2 {
			t.Fatalf("constraint targets agent %d, want %d or %d", cs[0].Agent, c.A1, c.A2)
		}
		if cs[0].Positive == cs[1].Positive {
			t.Errorf("the two constraints should be positive/negative complements, got both positive=%v", cs[0].Positive)
		}
	}
}
