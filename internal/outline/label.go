/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	sortpkg "sort"

	"gopatternstudio/internal/geom"
)

// LabelOptions controls the auto layout suggestion for piece labels and
// annotations. All units are in sheet coordinates. The algorithm is
// deterministic for identical inputs.
//
// Padding is added around the content size to form the label rect.
// Margin is the clearance to keep from the frame edges.
// GridStep controls the search granularity; lower values are slower but find
// tighter fits.
//
// Anchor, when provided (HasAnchor=true), biases search toward positions
// whose center is closest to the anchor (e.g., the piece centroid) while
// still avoiding collisions. If no collision-free placement exists, the
// least-overlapping candidate wins. The returned rect is always clamped to
// the frame inset by Margin. Attempts is the number of candidates evaluated.
type LabelOptions struct {
	Padding   float64
	Margin    float64
	GridStep  float64
	Anchor    geom.Pt
	HasAnchor bool
}

// SuggestLabelRect proposes a placement rect for a label given:
// - the sheet frame (or a piece bounding box used as the frame)
// - the content size (text box, before padding)
// - obstacles to avoid (other labels, piece outlines as rects)
// The returned rect includes the padding.
func SuggestLabelRect(frame geom.Rect, content geom.Size, obstacles []geom.Rect, opts LabelOptions) (geom.Rect, int) {
	// defaults
	if opts.Padding <= 0 {
		opts.Padding = 8
	}
	if opts.Margin <= 0 {
		opts.Margin = 8
	}
	if opts.GridStep <= 0 {
		opts.GridStep = 8
	}

	inner := frame.Inset(opts.Margin, opts.Margin)
	bw := max(0, content.W+2*opts.Padding)
	bh := max(0, content.H+2*opts.Padding)
	if bw > inner.W {
		bw = inner.W
	}
	if bh > inner.H {
		bh = inner.H
	}

	// Candidate grid of potential top-left positions within inner bounds.
	x0 := inner.X
	y0 := inner.Y
	x1 := inner.X + inner.W - bw
	y1 := inner.Y + inner.H - bh
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}

	var candidates []geom.Rect
	// Build grid according to GridStep (ensure last cell at x1/y1 is included).
	for y := y0; ; y += opts.GridStep {
		if y > y1 {
			y = y1
		}
		for x := x0; x <= x1+1e-3; x += opts.GridStep {
			if x > x1 {
				x = x1
			}
			candidates = append(candidates, geom.R(geom.FloatRound(x, 3), geom.FloatRound(y, 3), geom.FloatRound(bw, 3), geom.FloatRound(bh, 3)))
			if x == x1 {
				break
			}
		}
		if y == y1 {
			break
		}
	}

	// If we have an anchor, sort candidates by distance to anchor first (stable sort preserves row order ties).
	if opts.HasAnchor {
		sortpkg.SliceStable(candidates, func(i, j int) bool {
			di := candidates[i].Center().Dist(opts.Anchor)
			dj := candidates[j].Center().Dist(opts.Anchor)
			if di == dj { // tie-break by y,x to keep deterministic
				if candidates[i].Y == candidates[j].Y {
					return candidates[i].X < candidates[j].X
				}
				return candidates[i].Y < candidates[j].Y
			}
			return di < dj
		})
	}

	bestRect := candidates[0]
	bestCost := float64(+1e18)
	attempts := 0

	for _, c := range candidates {
		attempts++
		ovArea := totalOverlapArea(c, obstacles)
		if ovArea <= 0.0001 { // no collision
			// Early return on the first collision-free candidate in the current ordering
			bestRect = c
			break
		}
		// No perfect fit; compute cost and keep the best
		cost := ovArea * 10_000 // strong penalty in unit^2
		// Distance to anchor (if any); prefer closer to anchor
		if opts.HasAnchor {
			cost += c.Center().Dist(opts.Anchor)
		}
		// Prefer higher placements (smaller y) with a tiny bias to the left
		cost += c.Y * 0.01
		cost += c.X * 0.001
		if cost < bestCost {
			bestCost = cost
			bestRect = c
		}
	}

	// Clamp to inner bounds just in case of numeric drift.
	bestRect = clampRectTo(bestRect, inner)
	return bestRect, attempts
}

func clampRectTo(r geom.Rect, bounds geom.Rect) geom.Rect {
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	if r.X+r.W > bounds.X+bounds.W {
		r.X = bounds.X + bounds.W - r.W
	}
	if r.Y+r.H > bounds.Y+bounds.H {
		r.Y = bounds.Y + bounds.H - r.H
	}
	return r
}

func totalOverlapArea(r geom.Rect, obstacles []geom.Rect) float64 {
	var sum float64
	for _, o := range obstacles {
		if r.Intersects(o) {
			sum += r.Intersection(o).Area()
		}
	}
	return sum
}
