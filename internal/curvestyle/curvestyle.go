/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package curvestyle projects named curve templates onto two-node curve
// figures. A template is a pair of control points in a normalized chord
// frame (x runs 0..1 along the chord, y is measured in chord lengths);
// applying one replaces the figure's graph with exactly two handle-bearing
// nodes and one cubic edge, so manual handle edits are discarded by design
// of the operation, and re-applying identical parameters is a no-op.
package curvestyle

import (
	"math"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
)

// MaxBias bounds the horizontal apex shift to 20% of the chord either way.
const MaxBias = 0.2

// Preset is one named template of the catalog. Positive template y bulges
// toward the chord's screen-right perpendicular; FlipY selects the other
// side.
type Preset struct {
	ID        string
	Name      string
	Technical string // technical-drawing code shown on printed patterns
	C1        geom.Pt
	C2        geom.Pt
	Defaults  domain.CurveParams
}

var builtin = []Preset{
	{ID: "hip-curve", Name: "Hip Curve", Technical: "HC-1",
		C1: geom.P(0.25, 0.18), C2: geom.P(0.70, 0.05), Defaults: domain.CurveParams{Height: 1}},
	{ID: "armhole-front", Name: "Front Armhole", Technical: "AH-F",
		C1: geom.P(0.05, 0.30), C2: geom.P(0.45, 0.55), Defaults: domain.CurveParams{Height: 1}},
	{ID: "armhole-back", Name: "Back Armhole", Technical: "AH-B",
		C1: geom.P(0.08, 0.22), C2: geom.P(0.50, 0.40), Defaults: domain.CurveParams{Height: 1}},
	{ID: "neckline-front", Name: "Front Neckline", Technical: "NK-F",
		C1: geom.P(0.00, 0.55), C2: geom.P(0.45, 0.55), Defaults: domain.CurveParams{Height: 1}},
	{ID: "neckline-back", Name: "Back Neckline", Technical: "NK-B",
		C1: geom.P(0.20, 0.12), C2: geom.P(0.60, 0.12), Defaults: domain.CurveParams{Height: 1}},
	{ID: "sleeve-cap", Name: "Sleeve Cap", Technical: "SC-1",
		C1: geom.P(0.25, 0.35), C2: geom.P(0.75, -0.20), Defaults: domain.CurveParams{Height: 1}},
	{ID: "waist-curve", Name: "Waist Curve", Technical: "WC-1",
		C1: geom.P(0.30, 0.08), C2: geom.P(0.70, 0.08), Defaults: domain.CurveParams{Height: 1}},
	{ID: "hem-curve", Name: "Hem Curve", Technical: "HM-1",
		C1: geom.P(0.35, 0.04), C2: geom.P(0.65, 0.04), Defaults: domain.CurveParams{Height: 1}},
	{ID: "princess-bust", Name: "Princess Bust", Technical: "PR-B",
		C1: geom.P(0.40, 0.30), C2: geom.P(0.60, 0.30), Defaults: domain.CurveParams{Height: 1}},
}

// Catalog resolves preset ids. The builtin set is always present; packs
// loaded at runtime may override entries or add new ones.
type Catalog struct {
	order []string
	byID  map[string]Preset
}

// NewCatalog returns the builtin catalog extended by extra presets.
func NewCatalog(extra ...Preset) *Catalog {
	c := &Catalog{byID: make(map[string]Preset, len(builtin)+len(extra))}
	for _, p := range builtin {
		c.Add(p)
	}
	for _, p := range extra {
		c.Add(p)
	}
	return c
}

// Add registers a preset, replacing any existing entry with the same id
// while keeping its position in the listing order.
func (c *Catalog) Add(p Preset) {
	if p.ID == "" {
		return
	}
	if _, exists := c.byID[p.ID]; !exists {
		c.order = append(c.order, p.ID)
	}
	c.byID[p.ID] = p
}

// List returns the catalog in stable registration order.
func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Lookup(id string) (Preset, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Apply styles the figure with the named preset. Nil params means the
// preset's defaults.
func (c *Catalog) Apply(fig domain.Figure, id string, params *domain.CurveParams) (domain.Figure, bool) {
	p, ok := c.Lookup(id)
	if !ok {
		return domain.Figure{}, false
	}
	if params == nil {
		d := p.Defaults
		params = &d
	}
	return Apply(fig, p, *params)
}

// Apply re-synthesizes the figure as a styled two-node cubic curve between
// its current start and end positions. False when the figure has no usable
// endpoint pair or a degenerate chord.
func Apply(fig domain.Figure, preset Preset, params domain.CurveParams) (domain.Figure, bool) {
	out := fig.Clone()
	start, end, edgeID, ok := endpoints(out)
	if !ok {
		return domain.Figure{}, false
	}
	tr := outline.Transform(out)
	sw := tr.Apply(start.At)
	ew := tr.Apply(end.At)
	chord := ew.Sub(sw)
	if !sw.Finite() || !ew.Finite() || chord.Len() < geom.Epsilon {
		return domain.Figure{}, false
	}
	p := sanitizeParams(params)

	inv := outline.InverseTransform(out)
	c1 := inv.Apply(basisPoint(sw, chord, shapeControl(preset.C1, p)))
	c2 := inv.Apply(basisPoint(sw, chord, shapeControl(preset.C2, p)))
	ho := c1.Sub(start.At)
	hi := c2.Sub(end.At)
	start.HandleOut, start.HandleIn = &ho, nil
	end.HandleIn, end.HandleOut = &hi, nil

	out.Nodes = []domain.Node{start, end}
	out.Edges = []domain.Edge{{ID: edgeID, From: start.ID, To: end.ID, Kind: domain.EdgeCubic}}
	out.Closed = false
	if out.Kind == "" {
		out.Kind = domain.FigureCurve
	}
	out.Style = &domain.CurveStyle{
		Mode:        domain.CurveStyled,
		PresetID:    preset.ID,
		TechnicalID: preset.Technical,
		Params:      p,
	}
	return out, true
}

// Detach drops the preset link, keeping the synthesized handles as manual
// geometry.
func Detach(fig domain.Figure) domain.Figure {
	out := fig.Clone()
	out.Style = nil
	return out
}

// endpoints picks the curve's start and end nodes: the first edge whose
// nodes both resolve, else the first two nodes of an edgeless figure.
func endpoints(fig domain.Figure) (domain.Node, domain.Node, string, bool) {
	byID := make(map[string]domain.Node, len(fig.Nodes))
	for _, n := range fig.Nodes {
		byID[n.ID] = n
	}
	for _, e := range fig.Edges {
		from, okF := byID[e.From]
		to, okT := byID[e.To]
		if okF && okT && from.ID != to.ID {
			return from, to, e.ID, true
		}
	}
	if len(fig.Nodes) >= 2 {
		return fig.Nodes[0], fig.Nodes[1], fig.ID + "-c", true
	}
	return domain.Node{}, domain.Node{}, "", false
}

func sanitizeParams(p domain.CurveParams) domain.CurveParams {
	if p.Height == 0 || math.IsNaN(p.Height) || math.IsInf(p.Height, 0) {
		p.Height = 1
	}
	if math.IsNaN(p.Bias) {
		p.Bias = 0
	}
	p.Bias = min(max(p.Bias, -MaxBias), MaxBias)
	if math.IsNaN(p.RotateDeg) || math.IsInf(p.RotateDeg, 0) {
		p.RotateDeg = 0
	}
	return p
}

// shapeControl runs one template control point through bias, height, flips
// and rotation, in the normalized chord frame.
func shapeControl(c geom.Pt, p domain.CurveParams) geom.Pt {
	x := c.X + p.Bias
	y := c.Y * p.Height
	if p.FlipX {
		x = 1 - x
	}
	if p.FlipY {
		y = -y
	}
	if p.RotateDeg != 0 {
		return geom.P(x, y).RotAround(geom.P(0.5, 0), p.RotateDeg*math.Pi/180)
	}
	return geom.P(x, y)
}

// basisPoint maps a normalized control point into world space: x along the
// chord, y along the chord-length perpendicular.
func basisPoint(origin, chord, c geom.Pt) geom.Pt {
	return origin.Add(chord.Mul(c.X)).Add(chord.Perp().Mul(c.Y))
}
