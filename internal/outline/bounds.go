/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"math"
	"strings"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

// TextMeasurer estimates the box a text figure occupies. Implementations may
// consult real font metrics; the engine never renders text.
type TextMeasurer interface {
	EstimateBox(spec domain.TextSpec) geom.Size
}

// Bounds returns the figure's local bounding box. Text figures are estimated
// from font metrics heuristics; everything else uses the sampled polyline.
// Auxiliary dart vertices are included so dart apexes are never clipped.
// ok is false when the figure has no measurable geometry.
func Bounds(fig domain.Figure, steps int) (geom.Rect, bool) {
	return BoundsWithMeasurer(fig, steps, basicMeasurer{})
}

// BoundsWithMeasurer is Bounds with a caller-supplied text measurer.
func BoundsWithMeasurer(fig domain.Figure, steps int, m TextMeasurer) (geom.Rect, bool) {
	if fig.Kind == domain.FigureText {
		if fig.Text == nil || m == nil {
			return geom.Rect{}, false
		}
		sz := m.EstimateBox(*fig.Text)
		if sz.W <= 0 || sz.H <= 0 {
			return geom.Rect{}, false
		}
		return geom.R(0, 0, sz.W, sz.H), true
	}

	pts := Polyline(fig, steps)
	r, ok := geom.BoundsOf(pts)
	for _, n := range fig.Nodes {
		if n.Kind != domain.NodeDart {
			continue
		}
		if !ok {
			r = geom.R(n.At.X, n.At.Y, 0, 0)
			ok = true
			continue
		}
		r = r.Extend(n.At)
	}
	return r, ok
}

// WorldBounds returns the axis-aligned box of the transformed geometry in
// sheet coordinates.
func WorldBounds(fig domain.Figure, steps int) (geom.Rect, bool) {
	return WorldBoundsWithMeasurer(fig, steps, basicMeasurer{})
}

// WorldBoundsWithMeasurer is WorldBounds with a caller-supplied text
// measurer.
func WorldBoundsWithMeasurer(fig domain.Figure, steps int, m TextMeasurer) (geom.Rect, bool) {
	local, ok := BoundsWithMeasurer(fig, steps, m)
	if !ok {
		return geom.Rect{}, false
	}
	t := Transform(fig)
	corners := []geom.Pt{
		local.Min(),
		{X: local.X + local.W, Y: local.Y},
		local.Max(),
		{X: local.X, Y: local.Y + local.H},
	}
	for i, c := range corners {
		corners[i] = t.Apply(c)
	}
	r, _ := geom.BoundsOf(corners)
	return r, true
}

// basicMeasurer estimates text boxes from an average character width without
// any font data. Good enough for selection handles and sheet layout; exports
// that need tighter boxes inject a font-backed measurer.
type basicMeasurer struct{}

const avgCharWidthFactor = 0.6

func (basicMeasurer) EstimateBox(spec domain.TextSpec) geom.Size {
	return EstimateTextBox(spec)
}

// EstimateTextBox implements the shared heuristic: width from an average
// character advance, height from line count times line height, both padded.
func EstimateTextBox(spec domain.TextSpec) geom.Size {
	size := spec.Size
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return geom.Size{}
	}
	advance := size*avgCharWidthFactor + spec.LetterSpacing
	if advance <= 0 {
		advance = size * avgCharWidthFactor
	}
	lineHeight := size * 1.2
	if spec.LineHeight > 0 {
		lineHeight = size * spec.LineHeight
	}

	lines := 0
	maxChars := 0
	for _, line := range strings.Split(spec.Content, "\n") {
		n := len([]rune(line))
		if spec.WrapWidth > 0 && advance > 0 {
			perLine := int(spec.WrapWidth / advance)
			if perLine < 1 {
				perLine = 1
			}
			wrapped := (n + perLine - 1) / perLine
			if wrapped < 1 {
				wrapped = 1
			}
			lines += wrapped
			if n > perLine {
				n = perLine
			}
		} else {
			lines++
		}
		if n > maxChars {
			maxChars = n
		}
	}
	if lines < 1 {
		lines = 1
	}

	w := float64(maxChars) * advance
	if spec.WrapWidth > 0 && w > spec.WrapWidth {
		w = spec.WrapWidth
	}
	h := float64(lines) * lineHeight
	return geom.Size{W: w + 2*spec.Padding, H: h + 2*spec.Padding}
}
