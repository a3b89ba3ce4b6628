/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Polygon and polyline helpers shared by the outline, seam and dart engines.
// Polygons are vertex slices without a repeated closing vertex.

// SignedArea returns the shoelace area of the polygon. A positive sign means
// the vertices run clockwise in the editor's Y-down frame.
func SignedArea(pts []Pt) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	j := len(pts) - 1
	for i := range pts {
		sum += pts[j].Cross(pts[i])
		j = i
	}
	return sum / 2
}

// IsClockwise reports whether the polygon winds clockwise on screen.
func IsClockwise(pts []Pt) bool { return SignedArea(pts) > 0 }

// PointInPolygon reports whether p lies inside the polygon (even-odd rule).
// Points exactly on an edge may land on either side; callers that care nudge
// their probes off the boundary first.
func PointInPolygon(p Pt, pts []Pt) bool {
	if len(pts) < 3 {
		return false
	}
	in := false
	j := len(pts) - 1
	for i := range pts {
		if (pts[i].Y > p.Y) != (pts[j].Y > p.Y) &&
			p.X < (pts[j].X-pts[i].X)*(p.Y-pts[i].Y)/(pts[j].Y-pts[i].Y)+pts[i].X {
			in = !in
		}
		j = i
	}
	return in
}

// PerimeterLength returns the total edge length; closed adds the segment from
// the last vertex back to the first.
func PerimeterLength(pts []Pt, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += pts[i-1].Dist(pts[i])
	}
	if closed {
		sum += pts[len(pts)-1].Dist(pts[0])
	}
	return sum
}

// PointAtFraction walks the polygon perimeter to the normalized arclength
// fraction t in [0,1] and returns the point, the index of the containing
// segment (segment i runs from vertex i to i+1, wrapping when closed) and the
// local parameter within that segment. t is clamped; a degenerate polygon
// returns ok=false.
func PointAtFraction(pts []Pt, closed bool, t float64) (Pt, int, float64, bool) {
	total := PerimeterLength(pts, closed)
	if total < Epsilon || len(pts) < 2 {
		return Pt{}, 0, 0, false
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	target := t * total
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	var walked float64
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		l := a.Dist(b)
		if l < Epsilon {
			continue
		}
		if walked+l >= target-Epsilon {
			segT := (target - walked) / l
			if segT < 0 {
				segT = 0
			}
			if segT > 1 {
				segT = 1
			}
			return a.Lerp(b, segT), i, segT, true
		}
		walked += l
	}
	// numeric tail: land on the final vertex
	last := len(pts) - 1
	if closed {
		return pts[0], len(pts) - 1, 1, true
	}
	return pts[last], last - 1, 1, true
}

// ProjectOntoSegment returns the parameter t in [0,1] of the point on segment
// a-b closest to q.
func ProjectOntoSegment(a, b, q Pt) float64 {
	ab := b.Sub(a)
	l2 := ab.Len2()
	if l2 < Epsilon*Epsilon {
		return 0
	}
	t := q.Sub(a).Dot(ab) / l2
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ProjectOntoPolygon finds the closest point on the polygon outline to q.
// It returns the projected point, the containing segment index, the local
// segment parameter and the overall arclength fraction. ok is false for
// degenerate input.
func ProjectOntoPolygon(pts []Pt, closed bool, q Pt) (Pt, int, float64, float64, bool) {
	if len(pts) < 2 {
		return Pt{}, 0, 0, 0, false
	}
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	best := math.MaxFloat64
	var bestPt Pt
	bestSeg := -1
	bestT := 0.0
	var bestWalked float64
	var walked float64
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		t := ProjectOntoSegment(a, b, q)
		p := a.Lerp(b, t)
		d := p.Dist(q)
		if d < best {
			best = d
			bestPt = p
			bestSeg = i
			bestT = t
			bestWalked = walked + a.Dist(b)*t
		}
		walked += a.Dist(b)
	}
	if bestSeg < 0 || walked < Epsilon {
		return Pt{}, 0, 0, 0, false
	}
	return bestPt, bestSeg, bestT, bestWalked / walked, true
}

// SegmentIntersection intersects segments a0-a1 and b0-b1. It returns the
// intersection point and the parameters along each segment. ok is false for
// parallel or out-of-range intersections. Shared endpoints count as
// intersections; callers exclude adjacency themselves.
func SegmentIntersection(a0, a1, b0, b1 Pt) (Pt, float64, float64, bool) {
	p, ta, tb, ok := LineIntersection(a0, a1, b0, b1)
	if !ok {
		return Pt{}, 0, 0, false
	}
	const tol = 1e-9
	if ta < -tol || ta > 1+tol || tb < -tol || tb > 1+tol {
		return Pt{}, 0, 0, false
	}
	return p, ta, tb, true
}

// LineIntersection intersects the infinite lines through a0-a1 and b0-b1,
// returning the point and parameters relative to each segment span. Parallel
// (including collinear) lines yield ok=false.
func LineIntersection(a0, a1, b0, b1 Pt) (Pt, float64, float64, bool) {
	da := a1.Sub(a0)
	db := b1.Sub(b0)
	div := da.Cross(db)
	if math.Abs(div) < Epsilon {
		return Pt{}, 0, 0, false
	}
	d := b0.Sub(a0)
	ta := d.Cross(db) / div
	tb := d.Cross(da) / div
	return a0.Add(da.Mul(ta)), ta, tb, true
}

// DedupePoints removes consecutive vertices closer than tol, including a
// coincident closing vertex.
func DedupePoints(pts []Pt, tol float64) []Pt {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Pt, 0, len(pts))
	out = append(out, pts[0])
	for _, p := range pts[1:] {
		if p.Dist(out[len(out)-1]) > tol {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[0].Dist(out[len(out)-1]) <= tol {
		out = out[:len(out)-1]
	}
	return out
}
