/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func square10() []Pt {
	return []Pt{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func TestSignedAreaWinding(t *testing.T) {
	sq := square10()
	a := SignedArea(sq)
	if !almostEq(a, 100) {
		t.Fatalf("expected +100 for screen-clockwise square, got %v", a)
	}
	if !IsClockwise(sq) {
		t.Fatalf("expected clockwise winding")
	}
	rev := []Pt{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if a := SignedArea(rev); !almostEq(a, -100) {
		t.Fatalf("expected -100 for reversed square, got %v", a)
	}
	if a := SignedArea(sq[:2]); a != 0 {
		t.Fatalf("degenerate polygon should have zero area, got %v", a)
	}
}

func TestPointInPolygon(t *testing.T) {
	sq := square10()
	if !PointInPolygon(P(5, 5), sq) {
		t.Fatalf("center should be inside")
	}
	if PointInPolygon(P(15, 5), sq) || PointInPolygon(P(-1, -1), sq) {
		t.Fatalf("outside points reported inside")
	}
	// L-shape: notch cut from the top-right quadrant.
	l := []Pt{{0, 0}, {10, 0}, {10, 5}, {5, 5}, {5, 10}, {0, 10}}
	if !PointInPolygon(P(2, 8), l) {
		t.Fatalf("point in the leg should be inside")
	}
	if PointInPolygon(P(8, 8), l) {
		t.Fatalf("point in the notch should be outside")
	}
}

func TestPerimeterLength(t *testing.T) {
	sq := square10()
	if got := PerimeterLength(sq, true); !almostEq(got, 40) {
		t.Fatalf("closed perimeter: %v", got)
	}
	if got := PerimeterLength(sq, false); !almostEq(got, 30) {
		t.Fatalf("open polyline length: %v", got)
	}
	if got := PerimeterLength(sq[:1], true); got != 0 {
		t.Fatalf("single point has no length, got %v", got)
	}
}

func TestPointAtFraction(t *testing.T) {
	sq := square10()
	p, seg, segT, ok := PointAtFraction(sq, true, 0.375) // 15 units along, mid right edge
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqPt(p, P(10, 5)) {
		t.Fatalf("point at 0.375: %+v", p)
	}
	if seg != 1 || !almostEq(segT, 0.5) {
		t.Fatalf("segment location: seg=%d t=%v", seg, segT)
	}
	if p, _, _, ok := PointAtFraction(sq, true, 0); !ok || !almostEqPt(p, P(0, 0)) {
		t.Fatalf("t=0 should return the first vertex, got %+v", p)
	}
	if p, _, _, ok := PointAtFraction(sq, true, 1); !ok || !almostEqPt(p, P(0, 0)) {
		t.Fatalf("t=1 on a closed ring should wrap to the first vertex, got %+v", p)
	}
	// clamping
	if p, _, _, _ := PointAtFraction(sq, true, -3); !almostEqPt(p, P(0, 0)) {
		t.Fatalf("negative t should clamp to start, got %+v", p)
	}
	if _, _, _, ok := PointAtFraction(nil, true, 0.5); ok {
		t.Fatalf("empty polygon should not resolve a point")
	}
}

func TestProjectOntoPolygon(t *testing.T) {
	sq := square10()
	p, seg, segT, frac, ok := ProjectOntoPolygon(sq, true, P(5, -3))
	if !ok {
		t.Fatalf("expected ok")
	}
	if !almostEqPt(p, P(5, 0)) || seg != 0 || !almostEq(segT, 0.5) {
		t.Fatalf("projection onto bottom edge: p=%+v seg=%d t=%v", p, seg, segT)
	}
	if !almostEq(frac, 0.125) { // 5 of 40 units
		t.Fatalf("arclength fraction: %v", frac)
	}
	// corner attracts points beyond the segment span
	p, _, _, _, _ = ProjectOntoPolygon(sq, true, P(12, -2))
	if !almostEqPt(p, P(10, 0)) {
		t.Fatalf("expected corner projection, got %+v", p)
	}
	if _, _, _, _, ok := ProjectOntoPolygon([]Pt{{1, 1}}, true, P(0, 0)); ok {
		t.Fatalf("degenerate polygon should not project")
	}
}

func TestSegmentIntersection(t *testing.T) {
	p, ta, tb, ok := SegmentIntersection(P(0, 0), P(2, 0), P(1, -1), P(1, 1))
	if !ok {
		t.Fatalf("expected intersection")
	}
	if !almostEqPt(p, P(1, 0)) || !almostEq(ta, 0.5) || !almostEq(tb, 0.5) {
		t.Fatalf("intersection: p=%+v ta=%v tb=%v", p, ta, tb)
	}
	// crossing lines whose segments do not reach each other
	if _, _, _, ok := SegmentIntersection(P(0, 0), P(2, 0), P(5, -1), P(5, 1)); ok {
		t.Fatalf("expected no intersection outside segment spans")
	}
	// parallel
	if _, _, _, ok := SegmentIntersection(P(0, 0), P(2, 0), P(0, 1), P(2, 1)); ok {
		t.Fatalf("expected no intersection for parallel segments")
	}
}

func TestLineIntersectionExtendsBeyondSegments(t *testing.T) {
	p, ta, _, ok := LineIntersection(P(0, 0), P(1, 0), P(5, -1), P(5, 1))
	if !ok {
		t.Fatalf("expected line intersection")
	}
	if !almostEqPt(p, P(5, 0)) || !almostEq(ta, 5) {
		t.Fatalf("line intersection: p=%+v ta=%v", p, ta)
	}
}

func TestDedupePoints(t *testing.T) {
	in := []Pt{{0, 0}, {0, 0}, {1, 0}, {1, 1e-12}, {2, 0}, {0, 0}}
	out := DedupePoints(in, 1e-9)
	if len(out) != 3 {
		t.Fatalf("expected 3 points after dedupe, got %d: %+v", len(out), out)
	}
	if !almostEqPt(out[0], P(0, 0)) || !almostEqPt(out[1], P(1, 0)) || !almostEqPt(out[2], P(2, 0)) {
		t.Fatalf("unexpected dedupe result: %+v", out)
	}
	if DedupePoints(nil, 1e-9) != nil {
		t.Fatalf("nil input should stay nil")
	}
}
