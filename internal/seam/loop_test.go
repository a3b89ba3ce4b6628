package seam

import (
	"math"
	"testing"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func almostEqPt(a, b geom.Pt) bool { return almostEq(a.X, b.X) && almostEq(a.Y, b.Y) }

func graphSquare() domain.Figure {
	return domain.Figure{
		ID:     "p1",
		Kind:   domain.FigurePolygon,
		Closed: true,
		Nodes: []domain.Node{
			{ID: "n0", At: geom.P(0, 0)},
			{ID: "n1", At: geom.P(10, 0)},
			{ID: "n2", At: geom.P(10, 10)},
			{ID: "n3", At: geom.P(0, 10)},
		},
		Edges: []domain.Edge{
			{ID: "e0", From: "n0", To: "n1", Kind: domain.EdgeLine},
			{ID: "e1", From: "n1", To: "n2", Kind: domain.EdgeLine},
			{ID: "e2", From: "n2", To: "n3", Kind: domain.EdgeLine},
			{ID: "e3", From: "n3", To: "n0", Kind: domain.EdgeLine},
		},
	}
}

// Two unit squares sharing the edge b-e.
func fusedSquares() domain.Figure {
	return domain.Figure{
		ID:   "fused",
		Kind: domain.FigurePolygon,
		Nodes: []domain.Node{
			{ID: "a", At: geom.P(0, 0)},
			{ID: "b", At: geom.P(1, 0)},
			{ID: "c", At: geom.P(2, 0)},
			{ID: "d", At: geom.P(2, 1)},
			{ID: "e", At: geom.P(1, 1)},
			{ID: "f", At: geom.P(0, 1)},
		},
		Edges: []domain.Edge{
			{ID: "ab", From: "a", To: "b", Kind: domain.EdgeLine},
			{ID: "bc", From: "b", To: "c", Kind: domain.EdgeLine},
			{ID: "cd", From: "c", To: "d", Kind: domain.EdgeLine},
			{ID: "de", From: "d", To: "e", Kind: domain.EdgeLine},
			{ID: "ef", From: "e", To: "f", Kind: domain.EdgeLine},
			{ID: "fa", From: "f", To: "a", Kind: domain.EdgeLine},
			{ID: "be", From: "b", To: "e", Kind: domain.EdgeLine},
		},
	}
}

func TestOuterLoopSquareGraph(t *testing.T) {
	loop, ids := OuterLoopEdges(graphSquare(), 8)
	want := []geom.Pt{geom.P(0, 0), geom.P(10, 0), geom.P(10, 10), geom.P(0, 10)}
	if len(loop) != len(want) {
		t.Fatalf("loop has %d points, want %d: %v", len(loop), len(want), loop)
	}
	for i := range want {
		if !almostEqPt(loop[i], want[i]) {
			t.Fatalf("loop[%d] = %v, want %v", i, loop[i], want[i])
		}
	}
	wantIDs := []string{"e0", "e1", "e2", "e3"}
	if len(ids) != len(wantIDs) {
		t.Fatalf("got %d edge ids, want %d: %v", len(ids), len(wantIDs), ids)
	}
	for i := range wantIDs {
		if ids[i] != wantIDs[i] {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], wantIDs[i])
		}
	}
}

func TestTraceFacesFusedSquares(t *testing.T) {
	faces := TraceFaces(fusedSquares(), 8)
	if len(faces) != 3 {
		t.Fatalf("got %d faces, want 3 (two squares plus outer hull)", len(faces))
	}
	var best Face
	for _, f := range faces {
		if math.Abs(f.Area) > math.Abs(best.Area) {
			best = f
		}
	}
	if !almostEq(math.Abs(best.Area), 2) {
		t.Fatalf("outer face area = %g, want |2|", best.Area)
	}
	if len(best.Points) != 6 {
		t.Fatalf("outer face has %d points, want 6: %v", len(best.Points), best.Points)
	}
}

func TestOuterLoopFusedSquaresIsHexagon(t *testing.T) {
	loop := OuterLoop(fusedSquares(), 8)
	if len(loop) != 6 {
		t.Fatalf("outer loop has %d points, want 6: %v", len(loop), loop)
	}
	corners := []geom.Pt{
		geom.P(0, 0), geom.P(1, 0), geom.P(2, 0),
		geom.P(2, 1), geom.P(1, 1), geom.P(0, 1),
	}
	for _, c := range corners {
		found := 0
		for _, p := range loop {
			if almostEqPt(p, c) {
				found++
			}
		}
		if found != 1 {
			t.Fatalf("corner %v appears %d times in loop %v", c, found, loop)
		}
	}
}

// Two edges joining the same node positions collapse to one, keeping the
// longer of the pair.
func TestDedupeKeepsLongerDuplicate(t *testing.T) {
	out := geom.P(1, -2)
	in := geom.P(-1, -2)
	fig := domain.Figure{
		ID:   "tri",
		Kind: domain.FigurePolygon,
		Nodes: []domain.Node{
			{ID: "a", At: geom.P(0, 0), HandleOut: &out},
			{ID: "b", At: geom.P(4, 0), HandleIn: &in},
			{ID: "c", At: geom.P(2, 3)},
		},
		Edges: []domain.Edge{
			{ID: "straight", From: "a", To: "b", Kind: domain.EdgeLine},
			{ID: "arched", From: "a", To: "b", Kind: domain.EdgeCubic},
			{ID: "bc", From: "b", To: "c", Kind: domain.EdgeLine},
			{ID: "ca", From: "c", To: "a", Kind: domain.EdgeLine},
		},
	}
	loop := OuterLoop(fig, 10)
	if len(loop) < 9 {
		t.Fatalf("loop has %d points, want the sampled arch kept: %v", len(loop), loop)
	}
	minY := loop[0].Y
	for _, p := range loop {
		minY = min(minY, p.Y)
	}
	if minY > -1 {
		t.Fatalf("min Y = %g, want the arched edge to reach above the base", minY)
	}
}

func TestOuterLoopPrimitiveFallback(t *testing.T) {
	fig := domain.Figure{ID: "r", Kind: domain.FigureRect, Width: 4, Height: 2}
	loop, ids := OuterLoopEdges(fig, 8)
	if len(loop) != 4 {
		t.Fatalf("rect loop has %d points, want 4", len(loop))
	}
	if ids != nil {
		t.Fatalf("rect loop carries edge ids %v, want none", ids)
	}
}

func TestOuterLoopUnavailable(t *testing.T) {
	if loop := OuterLoop(domain.Figure{ID: "empty"}, 8); loop != nil {
		t.Fatalf("empty figure produced a loop: %v", loop)
	}
	text := domain.Figure{ID: "t", Kind: domain.FigureText, Text: &domain.TextSpec{Content: "x"}}
	if loop := OuterLoop(text, 8); loop != nil {
		t.Fatalf("text figure produced a loop: %v", loop)
	}
	if faces := TraceFaces(domain.Figure{ID: "none"}, 8); faces != nil {
		t.Fatalf("edgeless figure produced faces: %v", faces)
	}
}
