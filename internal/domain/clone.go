/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "gopatternstudio/internal/geom"

// Deep-copy helpers. Engine operations never mutate their inputs; they clone
// the figure, transform the clone and return it.

// Clone returns a deep copy of the figure.
func (f Figure) Clone() Figure {
	c := f
	c.Points = ClonePoints(f.Points)
	c.Base = ClonePoints(f.Base)
	if f.Nodes != nil {
		c.Nodes = make([]Node, len(f.Nodes))
		for i, n := range f.Nodes {
			c.Nodes[i] = n.Clone()
		}
	}
	if f.Edges != nil {
		c.Edges = make([]Edge, len(f.Edges))
		for i, e := range f.Edges {
			c.Edges[i] = e.Clone()
		}
	}
	if f.Darts != nil {
		c.Darts = make([]Dart, len(f.Darts))
		for i, d := range f.Darts {
			c.Darts[i] = d.Clone()
		}
	}
	if f.Style != nil {
		s := *f.Style
		c.Style = &s
	}
	if f.Seam != nil {
		s := *f.Seam
		if f.Seam.PerEdge != nil {
			s.PerEdge = make(map[string]float64, len(f.Seam.PerEdge))
			for k, v := range f.Seam.PerEdge {
				s.PerEdge[k] = v
			}
		}
		c.Seam = &s
	}
	if f.Grain != nil {
		g := *f.Grain
		c.Grain = &g
	}
	if f.Text != nil {
		t := *f.Text
		c.Text = &t
	}
	return c
}

// Clone returns a copy of the node with its own handle values.
func (n Node) Clone() Node {
	c := n
	c.HandleIn = clonePt(n.HandleIn)
	c.HandleOut = clonePt(n.HandleOut)
	return c
}

// Clone returns a copy of the edge with its own style value.
func (e Edge) Clone() Edge {
	c := e
	if e.Style != nil {
		s := *e.Style
		c.Style = &s
	}
	return c
}

// Clone returns a copy of the dart with its own anchor value.
func (d Dart) Clone() Dart {
	c := d
	c.Anchor = clonePt(d.Anchor)
	return c
}

// ClonePoints copies a point slice; nil stays nil.
func ClonePoints(pts []geom.Pt) []geom.Pt {
	if pts == nil {
		return nil
	}
	out := make([]geom.Pt, len(pts))
	copy(out, pts)
	return out
}

func clonePt(p *geom.Pt) *geom.Pt {
	if p == nil {
		return nil
	}
	q := *p
	return &q
}
