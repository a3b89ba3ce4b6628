/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Alignment guides and snapping helpers for interactive placement of pattern
// pieces on a sheet. These utilities are UI-agnostic and deterministic to
// enable unit testing and reuse across different frontends.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance (in drafting units) at which snapping
	// occurs. Typical UI values are 6-8 units.
	Threshold float64
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// Anchor represents a static reference rect (e.g., a sheet frame or the
// bounds of an already placed piece). Weight biases selection when distances
// tie (higher = preferred). When uncertain, set Weight to 1.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal".
// Kind indicates which features aligned: "edge" or "center".
// From and To denote the guide extents for rendering.
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
// For deterministic behavior, values are rounded to 3 decimal places.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// ComputeAlignGuides computes snapping adjustments for a moving piece rect
// against a set of anchors. It returns the snapped rectangle and any guide
// lines to render for visual feedback. Snapping happens independently in X and Y.
func ComputeAlignGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var guides []GuideLine

	// Horizontal (X) snapping candidates: left, centerX, right
	bestDX, bestDXDist, bestDXGuide := float64(0), float64(+1e18), (GuideLine{})
	// Vertical (Y) snapping: top, centerY, bottom
	bestDY, bestDYDist, bestDYGuide := float64(0), float64(+1e18), (GuideLine{})

	mxL, mxR, mxT, mxB, mxCX, mxCY := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H, moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		axL, axR, axT, axB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		axCX, axCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		// X axis
		if opts.SnapToEdges {
			// left-to-left
			d := mxL - axL
			considerX(&bestDX, &bestDXDist, &bestDXGuide, d, opts.Threshold, a.Weight, guideForVertical(axL, moving, a.Rect, "edge"))
			// right-to-right
			d = mxR - axR
			considerX(&bestDX, &bestDXDist, &bestDXGuide, d, opts.Threshold, a.Weight, guideForVertical(axR, moving, a.Rect, "edge"))
			// left-to-right (abut) and right-to-left
			d = mxL - axR
			considerX(&bestDX, &bestDXDist, &bestDXGuide, d, opts.Threshold, a.Weight, guideForVertical(axR, moving, a.Rect, "edge"))
			d = mxR - axL
			considerX(&bestDX, &bestDXDist, &bestDXGuide, d, opts.Threshold, a.Weight, guideForVertical(axL, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			d := mxCX - axCX
			considerX(&bestDX, &bestDXDist, &bestDXGuide, d, opts.Threshold, a.Weight, guideForVertical(axCX, moving, a.Rect, "center"))
		}

		// Y axis
		if opts.SnapToEdges {
			// top-to-top
			d := mxT - axT
			considerY(&bestDY, &bestDYDist, &bestDYGuide, d, opts.Threshold, a.Weight, guideForHorizontal(axT, moving, a.Rect, "edge"))
			// bottom-to-bottom
			d = mxB - axB
			considerY(&bestDY, &bestDYDist, &bestDYGuide, d, opts.Threshold, a.Weight, guideForHorizontal(axB, moving, a.Rect, "edge"))
			// top-to-bottom and bottom-to-top
			d = mxT - axB
			considerY(&bestDY, &bestDYDist, &bestDYGuide, d, opts.Threshold, a.Weight, guideForHorizontal(axB, moving, a.Rect, "edge"))
			d = mxB - axT
			considerY(&bestDY, &bestDYDist, &bestDYGuide, d, opts.Threshold, a.Weight, guideForHorizontal(axT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			d := mxCY - axCY
			considerY(&bestDY, &bestDYDist, &bestDYGuide, d, opts.Threshold, a.Weight, guideForHorizontal(axCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	if bestDXDist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bestDX, 3)
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-bestDY, 3)
		guides = append(guides, bestDYGuide)
	}
	return snapped, guides
}

func considerX(bestDX *float64, bestD *float64, bestGuide *GuideLine, delta float64, threshold float64, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / max(1, weight)
	if score < *bestD {
		*bestD = dist
		*bestDX = delta
		*bestGuide = g
	}
}

func considerY(bestDY *float64, bestD *float64, bestGuide *GuideLine, delta float64, threshold float64, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / max(1, weight)
	if score < *bestD {
		*bestD = dist
		*bestDY = delta
		*bestGuide = g
	}
}

func guideForVertical(x float64, a Rect, b Rect, kind string) GuideLine {
	minY := min(a.Y, b.Y)
	maxY := max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func guideForHorizontal(y float64, a Rect, b Rect, kind string) GuideLine {
	minX := min(a.X, b.X)
	maxX := max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}
