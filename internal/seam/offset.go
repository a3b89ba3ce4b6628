/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package seam

import (
	"math"

	"gopatternstudio/internal/geom"
)

// Offset displaces a closed contour parallel to itself. Positive distances
// move outward, negative inward; zero or non-finite distances yield nil, as
// does any input with fewer than 3 usable vertices. Winding is preserved.
//
// Convex corners are mitered by intersecting the adjacent offset lines.
// Concave corners use the crossing point when the offset segments cross
// within their own spans (the offset exceeds the local corner radius) and
// otherwise keep both cut endpoints instead of inventing a bevel. Residual
// self-intersections are resolved by re-walking the contour and keeping the
// branch enclosing the larger area.
func Offset(pts []geom.Pt, d float64) []geom.Pt {
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	ring := geom.DedupePoints(pts, geom.Epsilon)
	n := len(ring)
	if n < 3 {
		return nil
	}
	dists := make([]float64, n)
	for i := range dists {
		dists[i] = d
	}
	out := offsetRing(ring, dists)
	if len(out) < 3 {
		return nil
	}
	out = resolveSelfIntersections(out, 2*len(out))
	if len(out) < 3 {
		return nil
	}
	return out
}

// offsetRing runs the corner-by-corner offset with one distance per edge.
// Every distance must be usable; callers filter beforehand.
func offsetRing(ring []geom.Pt, dists []float64) []geom.Pt {
	n := len(ring)
	w := windingOf(ring)
	dirs := make([]geom.Pt, n)
	offA := make([]geom.Pt, n)
	offB := make([]geom.Pt, n)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		dir := b.Sub(a).Normalize()
		if dir.IsZero() {
			dir = geom.P(1, 0)
		}
		dirs[i] = dir
		outward := dir.Perp().Mul(-w)
		offA[i] = a.Add(outward.Mul(dists[i]))
		offB[i] = b.Add(outward.Mul(dists[i]))
	}

	out := make([]geom.Pt, 0, n+4)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		out = appendCorner(out, w, dirs[prev], dirs[i], offA[prev], offB[prev], offA[i], offB[i])
	}
	return geom.DedupePoints(out, geom.Epsilon)
}

// appendCorner emits the offset vertex (or cut endpoints) for the corner
// between edge p (pa-pb) and edge q (qa-qb).
func appendCorner(out []geom.Pt, w float64, dirP, dirQ geom.Pt, pa, pb, qa, qb geom.Pt) []geom.Pt {
	cross := dirP.Cross(dirQ)
	if math.Abs(cross) < geom.Epsilon {
		// collinear edges share their offset line
		return append(out, qa)
	}
	if cross*w > 0 {
		// convex: miter
		if p, _, _, ok := geom.LineIntersection(pa, pb, qa, qb); ok {
			return append(out, p)
		}
		return append(out, qa)
	}
	// concave: crossing within both spans wins, otherwise both cut endpoints
	if p, _, _, ok := geom.SegmentIntersection(pa, pb, qa, qb); ok {
		return append(out, p)
	}
	return append(out, pb, qa)
}

func windingOf(ring []geom.Pt) float64 {
	if geom.SignedArea(ring) < 0 {
		return -1
	}
	return 1
}

// OffsetEdges offsets the contour with one distance per edge. Edges whose
// distance is non-finite, zero or negative are skipped entirely; the
// remaining runs of consecutive edges come back as separate strips, each an
// open polyline (or the full closed ring when nothing was skipped). dists
// must carry exactly one entry per contour segment.
func OffsetEdges(pts []geom.Pt, dists []float64) [][]geom.Pt {
	ring := geom.DedupePoints(pts, geom.Epsilon)
	n := len(ring)
	if n < 3 || len(dists) != n {
		return nil
	}
	keep := make([]bool, n)
	kept := 0
	for i, d := range dists {
		if d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0) {
			keep[i] = true
			kept++
		}
	}
	if kept == 0 {
		return nil
	}
	if kept == n {
		out := offsetRing(ring, dists)
		if len(out) < 3 {
			return nil
		}
		out = resolveSelfIntersections(out, 2*len(out))
		if len(out) < 3 {
			return nil
		}
		return [][]geom.Pt{out}
	}

	w := windingOf(ring)
	dirs := make([]geom.Pt, n)
	offA := make([]geom.Pt, n)
	offB := make([]geom.Pt, n)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		dir := b.Sub(a).Normalize()
		if dir.IsZero() {
			dir = geom.P(1, 0)
		}
		dirs[i] = dir
		outward := dir.Perp().Mul(-w)
		offA[i] = a.Add(outward.Mul(dists[i]))
		offB[i] = b.Add(outward.Mul(dists[i]))
	}

	// walk circular runs of kept edges, starting after a skipped edge
	start := 0
	for start < n && !(keep[start] && !keep[(start-1+n)%n]) {
		start++
	}
	if start == n {
		return nil
	}
	var strips [][]geom.Pt
	i := start
	for visited := 0; visited < n; {
		if !keep[i] {
			i = (i + 1) % n
			visited++
			continue
		}
		strip := []geom.Pt{offA[i]}
		for {
			next := (i + 1) % n
			if !keep[next] {
				strip = append(strip, offB[i])
				break
			}
			// stitch the adjacent kept segments at their shared corner
			strip = appendCorner(strip, w, dirs[i], dirs[next], offA[i], offB[i], offA[next], offB[next])
			i = next
			visited++
		}
		strip = geom.DedupePoints(strip, geom.Epsilon)
		if len(strip) >= 2 {
			strips = append(strips, strip)
		}
		i = (i + 1) % n
		visited++
	}
	return strips
}

// SelfIntersections returns the interior crossing points between
// non-adjacent contour segments. An empty result means the contour is
// simple.
func SelfIntersections(ring []geom.Pt) []geom.Pt {
	var out []geom.Pt
	n := len(ring)
	if n < 4 {
		return nil
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			a0, a1 := ring[i], ring[(i+1)%n]
			b0, b1 := ring[j], ring[(j+1)%n]
			p, ta, tb, ok := geom.SegmentIntersection(a0, a1, b0, b1)
			if !ok {
				continue
			}
			const inner = 1e-9
			if ta <= inner || ta >= 1-inner || tb <= inner || tb >= 1-inner {
				continue // endpoint graze, not a crossing
			}
			out = append(out, p)
		}
	}
	return out
}

// firstSelfIntersection locates the first interior crossing, returning the
// two segment indices and the crossing point.
func firstSelfIntersection(ring []geom.Pt) (int, int, geom.Pt, bool) {
	n := len(ring)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			p, ta, tb, ok := geom.SegmentIntersection(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n])
			if !ok {
				continue
			}
			const inner = 1e-9
			if ta <= inner || ta >= 1-inner || tb <= inner || tb >= 1-inner {
				continue
			}
			return i, j, p, true
		}
	}
	return 0, 0, geom.Pt{}, false
}

// resolveSelfIntersections re-walks a crossing contour, keeping at every
// crossing the branch that encloses the larger area and dropping the bowtie
// remainder. budget caps the number of splits on pathological input.
func resolveSelfIntersections(ring []geom.Pt, budget int) []geom.Pt {
	for iter := 0; iter < budget; iter++ {
		i, j, x, found := firstSelfIntersection(ring)
		if !found {
			return ring
		}
		a := make([]geom.Pt, 0, i+2+len(ring)-j-1)
		a = append(a, ring[:i+1]...)
		a = append(a, x)
		a = append(a, ring[j+1:]...)
		b := make([]geom.Pt, 0, j-i+1)
		b = append(b, x)
		b = append(b, ring[i+1:j+1]...)
		a = geom.DedupePoints(a, geom.Epsilon)
		b = geom.DedupePoints(b, geom.Epsilon)
		if math.Abs(geom.SignedArea(a)) >= math.Abs(geom.SignedArea(b)) {
			ring = a
		} else {
			ring = b
		}
		if len(ring) < 3 {
			return nil
		}
	}
	return ring
}
