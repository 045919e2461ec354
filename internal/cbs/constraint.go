// Package cbs implements Conflict-Based Search over internal/core grids.
package cbs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/elektrokombinacija/mapf-cbs/internal/core"
)

// Constraint forbids (Positive == false) or requires (Positive == true)
// agent Agent to be at/traverse Loc at timestep T. Loc has one vertex for a
// vertex constraint or two (ordered: from, to) for an edge constraint.
type Constraint struct {
	Agent    int
	Loc      []core.Vertex
	T        int
	Positive bool
}

// key is the canonical, hashable representation of a Constraint's location
// and timestep, used as part of a conflict-tree node's constraint-set map
// key (and so of its fingerprint). ConstraintTable buckets use locKey.
func (c Constraint) key() string {
	var b strings.Builder
	for _, v := range c.Loc {
		b.WriteString(v.String())
		b.WriteByte('|')
	}
	b.WriteByte('@')
	b.WriteString(strconv.Itoa(c.T))
	return b.String()
}

// locKey canonicalizes a bare location tuple (used for constraint-table
// bucket lookups, where the Positive flag is irrelevant).
func locKey(loc ...core.Vertex) string {
	var b strings.Builder
	for _, v := range loc {
		b.WriteString(v.String())
		b.WriteByte('|')
	}
	return b.String()
}

// fingerprint returns a canonical, order-independent string for a
// constraint set, used as the constraint-set component of a node's state
// key and as the low-level path cache's key.
func fingerprint(constraints map[string]Constraint) string {
	keys := make([]string, 0, len(constraints))
	for k, c := range constraints {
		sign := "n"
		if c.Positive {
			sign = "p"
		}
		keys = append(keys, k+"@"+sign+"#"+strconv.Itoa(c.T)+"#"+strconv.Itoa(c.Agent))
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}

// pathsKey returns a canonical string for an ordered slice of per-agent
// paths, preserving agent order (unlike fingerprint, this is not
// order-independent: paths[i] always belongs to agent i).
func pathsKey(paths []core.Path) string {
	var b strings.Builder
	for _, p := range paths {
		for _, v := range p {
			b.WriteString(v.String())
			b.WriteByte('|')
		}
		b.WriteByte(';')
	}
	return b.String()
}

// stateKey is the full identity of a conflict-tree node for duplicate
// detection: the paths tuple together with the constraint set. Two nodes
// can share a constraint set while holding different path assignments,
// because an agent that isn't replanned keeps whatever path it was
// assigned under an earlier, less-constrained ancestor; collapsing such
// nodes on the constraint set alone would risk discarding the one holding
// the optimal conflict-free assignment.
func stateKey(paths []core.Path, constraints map[string]Constraint) string {
	return pathsKey(paths) + "#" + fingerprint(constraints)
}

// ConstraintTable is a per-agent index of positive and negative constraints
// keyed by timestep, built fresh from a global constraint set each time the
// low-level planner runs.
type ConstraintTable struct {
	positive map[int]map[string]bool
	negative map[int]map[string]bool
}

// NewConstraintTable partitions constraints into this agent's positive and
// negative buckets. A positive constraint declared for a different agent
// implies a symmetric negative constraint on every other agent at the same
// space-time element: for an edge (u, v), both (u, v) and its reverse
// (v, u) are inserted as negatives, and (as a conservative strengthening)
// the two endpoint vertices are also inserted as negative vertex
// constraints at the corresponding timesteps, since the original agent
// occupies both u (at t-1) and v (at t) during that forbidden transition.
func NewConstraintTable(constraints []Constraint, agent int) *ConstraintTable {
	t := &ConstraintTable{
		positive: make(map[int]map[string]bool),
		negative: make(map[int]map[string]bool),
	}

	addNeg := func(ts int, loc []core.Vertex) {
		if t.negative[ts] == nil {
			t.negative[ts] = make(map[string]bool)
		}
		t.negative[ts][locKey(loc...)] = true
	}

	for _, c := range constraints {
		if c.Agent == agent {
			if c.Positive {
				if t.positive[c.T] == nil {
					t.positive[c.T] = make(map[string]bool)
				}
				t.positive[c.T][locKey(c.Loc...)] = true
			} else {
				addNeg(c.T, c.Loc)
			}
			continue
		}

		if !c.Positive {
			continue
		}

		// Another agent's positive constraint: forbid everyone else from
		// being at, or traversing into, the same space-time element.
		addNeg(c.T, c.Loc)
		if len(c.Loc) == 2 {
			addNeg(c.T, []core.Vertex{c.Loc[1], c.Loc[0]})
			addNeg(c.T-1, []core.Vertex{c.Loc[0]})
			addNeg(c.T, []core.Vertex{c.Loc[1]})
		}
	}

	return t
}

// IsPositivelyConstrained reports whether moving from curr to next at time
// t satisfies (forces) a positive constraint: either the destination vertex
// or the specific directed edge is positively constrained at t.
func (t *ConstraintTable) IsPositivelyConstrained(curr, next core.Vertex, ts int) bool {
	bucket := t.positive[ts]
	if bucket == nil {
		return false
	}
	return bucket[locKey(next)] || bucket[locKey(curr, next)]
}

// IsNegativelyConstrained reports whether moving from curr to next at time
// t is forbidden: either the destination vertex or the specific directed
// edge is negatively constrained at t.
func (t *ConstraintTable) IsNegativelyConstrained(curr, next core.Vertex, ts int) bool {
	bucket := t.negative[ts]
	if bucket == nil {
		return false
	}
	return bucket[locKey(next)] || bucket[locKey(curr, next)]
}

// NegativeAt returns the canonical keys of every negative constraint at
// timestep t, used to check for future goal-occupancy constraints.
func (t *ConstraintTable) NegativeAt(ts int) map[string]bool {
	return t.negative[ts]
}
