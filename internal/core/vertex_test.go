package core

import "testing"

func TestPathAt(t *testing.T) {
	p := Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}

	tests := []struct {
		t    int
		want Vertex
	}{
		{0, Vertex{X: 0, Y: 0}},
		{1, Vertex{X: 0, Y: 1}},
		{2, Vertex{X: 0, Y: 2}},
		{3, Vertex{X: 0, Y: 2}}, // waits at goal past path end
		{100, Vertex{X: 0, Y: 2}},
	}
	for _, tt := range tests {
		if got := p.At(tt.t); got != tt.want {
			t.Errorf("Path.At(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestPathCost(t *testing.T) {
	tests := []struct {
		name string
		p    Path
		want int
	}{
		{"empty", nil, 0},
		{"single vertex", Path{{X: 0, Y: 0}}, 0},
		{"three vertices", Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}, 2},
	}
	for _, tt := range tests {
		if got := tt.p.Cost(); got != tt.want {
			t.Errorf("%s: Cost() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSumOfCost(t *testing.T) {
	paths := []Path{
		{{X: 0, Y: 0}, {X: 0, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	if got := SumOfCost(paths); got != 3 {
		t.Errorf("SumOfCost() = %d, want 3", got)
	}
}

func TestVertexString(t *testing.T) {
	v := Vertex{X: 3, Y: 5}
	if got := v.String(); got != "3,5" {
		t.Errorf("Vertex.String() = %q, want %q", got, "3,5")
	}
}
