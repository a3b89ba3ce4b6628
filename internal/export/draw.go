/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"sort"
	"strings"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
	"gopatternstudio/internal/seam"
)

// Line classes follow drafting conventions: cut lines solid, seam allowances
// dashed, fold lines dash-dot, guide lines dotted. Dash patterns are stated
// in centimeters and scaled by the document's units-per-cm so the printed
// rhythm stays the same across unit systems.
const (
	classCut   = "cut"
	classSeam  = "seam"
	classFold  = "fold"
	classGuide = "guide"
	classDart  = "dart"
	classGrain = "grain"
)

// drawPath is one world-space stroke of a sheet.
type drawPath struct {
	pts    []geom.Pt
	closed bool
	class  string
	width  float64       // sheet units; 0 takes the class default
	color  *domain.Color // nil takes the exporter's class color
}

// drawText is a positioned string in world space. Size is in sheet units.
// Centered text anchors at its midpoint instead of the left baseline edge.
type drawText struct {
	at       geom.Pt
	text     string
	font     string
	size     float64
	centered bool
}

// unitsPerCm returns the document's physical scale. A zero field falls back
// to the unit label, and finally to 1 (centimeter drawings).
func unitsPerCm(doc *domain.Document) float64 {
	if doc.UnitsPerCm > 0 {
		return doc.UnitsPerCm
	}
	switch doc.Units {
	case "mm":
		return 10
	case "in":
		return 1 / 2.54
	}
	return 1
}

// classStroke returns the default stroke width and dash pattern for a line
// class, both in sheet units.
func classStroke(class string, upc float64) (width float64, dash []float64) {
	switch class {
	case classSeam:
		return 0.035 * upc, []float64{0.4 * upc, 0.2 * upc}
	case classFold:
		return 0.03 * upc, []float64{0.6 * upc, 0.15 * upc, 0.1 * upc, 0.15 * upc}
	case classGuide:
		return 0.02 * upc, []float64{0.15 * upc, 0.15 * upc}
	case classDart:
		return 0.03 * upc, nil
	case classGrain:
		return 0.04 * upc, nil
	default:
		return 0.05 * upc, nil
	}
}

// strokeFor resolves the effective color, width and dash of a path against
// the exporter's option colors.
func strokeFor(p drawPath, upc float64, cut, seamCol, guide domain.Color) (domain.Color, float64, []float64) {
	w, dash := classStroke(p.class, upc)
	if p.width > 0 {
		w = p.width
	}
	col := cut
	switch p.class {
	case classSeam:
		col = seamCol
	case classGuide:
		col = guide
	}
	if p.color != nil {
		col = *p.color
	}
	return col, w, dash
}

// sortedFigures returns the sheet's figures in paint order, lowest z first.
func sortedFigures(sheet domain.Sheet) []domain.Figure {
	figs := make([]domain.Figure, len(sheet.Figures))
	copy(figs, sheet.Figures)
	sort.SliceStable(figs, func(i, j int) bool { return figs[i].ZOrder < figs[j].ZOrder })
	return figs
}

// closedPiece reports whether the figure encloses area when drawn.
func closedPiece(fig domain.Figure) bool {
	return fig.Closed || fig.Kind == domain.FigureRect || fig.Kind == domain.FigureCircle
}

// figurePaths decomposes a figure into world-space strokes: the piece
// contour, styled or internal edges, dart legs and the grain arrow. Text
// content is handled by figureTexts instead.
func figurePaths(fig domain.Figure, steps int) []drawPath {
	var paths []drawPath
	switch {
	case fig.Kind == domain.FigureText:
		// no stroke geometry of its own
	case fig.Kind == domain.FigureSeam:
		m := outline.Transform(fig)
		strips := seam.Strips(fig)
		for _, strip := range strips {
			if len(strip) < 2 {
				continue
			}
			paths = append(paths, drawPath{
				pts:    applyAll(m, strip),
				closed: fig.Closed && len(strips) == 1,
				class:  classSeam,
			})
		}
	case len(fig.Edges) > 0:
		m := outline.Transform(fig)
		loop, loopIDs := seam.OuterLoopEdges(fig, steps)
		if len(loop) >= 3 {
			paths = append(paths, drawPath{pts: applyAll(m, loop), closed: true, class: classCut})
		} else if pts := outline.WorldPolyline(fig, steps); len(pts) >= 2 {
			paths = append(paths, drawPath{pts: pts, closed: fig.Closed, class: classCut})
		}
		onLoop := make(map[string]bool, len(loopIDs))
		for _, id := range loopIDs {
			onLoop[id] = true
		}
		for _, e := range fig.Edges {
			class, width, color := edgeOverride(e, onLoop[e.ID])
			if class == "" {
				continue
			}
			pts := outline.EdgePolyline(fig, e.ID, steps)
			if len(pts) < 2 {
				continue
			}
			paths = append(paths, drawPath{pts: applyAll(m, pts), class: class, width: width, color: color})
		}
	default:
		if pts := outline.WorldPolyline(fig, steps); len(pts) >= 2 {
			paths = append(paths, drawPath{pts: pts, closed: closedPiece(fig), class: classCut})
		}
	}
	paths = append(paths, dartLegs(fig)...)
	paths = append(paths, grainArrow(fig)...)
	return paths
}

// edgeOverride decides whether an edge needs its own stroke on top of the
// contour: any edge with an explicit style, and unstyled edges that are not
// part of the outer loop (internal construction lines). Returns an empty
// class for edges already covered by the loop stroke.
func edgeOverride(e domain.Edge, onLoop bool) (class string, width float64, color *domain.Color) {
	if e.Style != nil {
		class = e.Style.Line
		if class == "" {
			class = classGuide
		}
		width = e.Style.Width
		if c := e.Style.Color; c.A != 0 {
			cc := c
			color = &cc
		}
		return class, width, color
	}
	if !onLoop {
		return classGuide, 0, nil
	}
	return "", 0, nil
}

// dartLegs draws left-apex-right for every dart whose wedge nodes are still
// present. The legs overlap the contour notch; stroking them again keeps
// darts visible at thin export widths.
func dartLegs(fig domain.Figure) []drawPath {
	if len(fig.Darts) == 0 {
		return nil
	}
	byID := make(map[string]geom.Pt, len(fig.Nodes))
	for _, n := range fig.Nodes {
		byID[n.ID] = n.At
	}
	m := outline.Transform(fig)
	var paths []drawPath
	for _, d := range fig.Darts {
		l, lok := byID[d.LeftID]
		a, aok := byID[d.ApexID]
		r, rok := byID[d.RightID]
		if !lok || !aok || !rok {
			continue
		}
		paths = append(paths, drawPath{
			pts:   []geom.Pt{m.Apply(l), m.Apply(a), m.Apply(r)},
			class: classDart,
		})
	}
	return paths
}

// grainArrow renders the grain line with a barbed head at each end. Fold
// grain lines keep the fold dash so they read as placed-on-fold markers.
func grainArrow(fig domain.Figure) []drawPath {
	g := fig.Grain
	if g == nil {
		return nil
	}
	m := outline.Transform(fig)
	from := m.Apply(g.From)
	to := m.Apply(g.To)
	d := to.Sub(from)
	length := d.Len()
	if length < geom.Epsilon {
		return nil
	}
	dir := d.Mul(1 / length)
	head := length * 0.12
	class := classGrain
	if g.Kind == domain.GrainFold {
		class = classFold
	}
	barb := func(tip geom.Pt, back geom.Pt) drawPath {
		left := tip.Add(back.Rot(grainBarbRad).Mul(head))
		right := tip.Add(back.Rot(-grainBarbRad).Mul(head))
		return drawPath{pts: []geom.Pt{left, tip, right}, class: class}
	}
	return []drawPath{
		{pts: []geom.Pt{from, to}, class: class},
		barb(to, dir.Neg()),
		barb(from, dir),
	}
}

// grainBarbRad is the half-opening of an arrowhead, ~25 degrees.
const grainBarbRad = 0.436

// figureTexts returns a text figure's content positioned in world space,
// one entry per line, stacked by the spec's line height.
func figureTexts(fig domain.Figure) []drawText {
	if fig.Kind != domain.FigureText || fig.Text == nil || fig.Text.Content == "" {
		return nil
	}
	spec := *fig.Text
	size := spec.Size
	if size <= 0 {
		size = 1
	}
	lh := spec.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	var out []drawText
	y := spec.Padding + size
	for _, line := range strings.Split(spec.Content, "\n") {
		if line != "" {
			out = append(out, drawText{
				at:   outline.LocalToWorld(fig, geom.P(spec.Padding, y)),
				text: line,
				font: spec.Font,
				size: size,
			})
		}
		y += size * lh
	}
	return out
}

// labelPlacements lays out one name label per closed piece, biased toward
// the piece center and avoiding labels already placed. Document order keeps
// the result deterministic.
func labelPlacements(sheet domain.Sheet, upc float64, steps int) []drawText {
	frame := geom.R(0, 0, sheet.Width, sheet.Height)
	size := 0.6 * upc
	var placed []geom.Rect
	var out []drawText
	for _, fig := range sheet.Figures {
		if fig.Name == "" || fig.Kind == domain.FigureSeam || fig.Kind == domain.FigureText {
			continue
		}
		if !closedPiece(fig) {
			continue
		}
		b, ok := outline.WorldBounds(fig, steps)
		if !ok {
			continue
		}
		content := outline.EstimateTextBox(domain.TextSpec{Content: fig.Name, Size: size})
		r, _ := outline.SuggestLabelRect(frame, content, placed, outline.LabelOptions{
			Padding:   0.1 * upc,
			Margin:    0.2 * upc,
			GridStep:  0.5 * upc,
			Anchor:    b.Center(),
			HasAnchor: true,
		})
		placed = append(placed, r)
		c := r.Center()
		out = append(out, drawText{
			at:       geom.P(c.X, c.Y+0.35*size),
			text:     fig.Name,
			size:     size,
			centered: true,
		})
	}
	return out
}

func applyAll(m geom.Affine, pts []geom.Pt) []geom.Pt {
	out := make([]geom.Pt, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}
