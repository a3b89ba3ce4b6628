/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package outline turns figure node/edge graphs into drawable polylines,
// local/world transforms and bounding boxes. Malformed graphs degrade to
// weaker traversal strategies instead of failing; a figure that yields no
// usable polyline returns nil and the caller draws nothing.
package outline

import (
	"math"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

const (
	// DefaultSteps is the cubic sampling resolution used when the caller
	// passes a non-positive step count.
	DefaultSteps = 24
	// DefaultCircleSegments is the polygon resolution for circle figures,
	// which have no discrete vertex graph of their own.
	DefaultCircleSegments = 36
)

// Polyline samples the figure into an ordered local-space point list. Curve
// edges are sampled at steps segments; straight edges keep their endpoints;
// shared vertices between consecutive edges are not duplicated.
//
// Graphs that are not a plain chain or cycle fall back, in order, to a
// boundary walk for fused contours, a directed traversal from a source node
// for open figures, and finally naive edge order. The first strategy that
// produces a non-degenerate result wins.
func Polyline(fig domain.Figure, steps int) []geom.Pt {
	if steps < 1 {
		steps = DefaultSteps
	}
	if len(fig.Edges) > 0 {
		return graphPolyline(fig, steps)
	}
	switch fig.Kind {
	case domain.FigureRect:
		return RectPoints(fig.Width, fig.Height)
	case domain.FigureCircle:
		return CirclePoints(fig.Radius, DefaultCircleSegments)
	}
	if len(fig.Points) >= 2 {
		return domain.ClonePoints(fig.Points)
	}
	return nil
}

// RectPoints returns the four corners of a width x height rectangle with its
// origin at the local top-left, wound clockwise on screen. Non-positive
// dimensions yield nil.
func RectPoints(w, h float64) []geom.Pt {
	if w <= 0 || h <= 0 {
		return nil
	}
	return []geom.Pt{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// CirclePoints samples a radius-r circle centered on the local origin into a
// fixed-resolution polygon. Non-positive radii yield nil; fewer than 3
// segments are raised to 3.
func CirclePoints(r float64, segments int) []geom.Pt {
	if r <= 0 || !geom.P(r, 0).Finite() {
		return nil
	}
	if segments < 3 {
		segments = 3
	}
	pts := make([]geom.Pt, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = geom.P(r*math.Cos(a), r*math.Sin(a))
	}
	return pts
}

func graphPolyline(fig domain.Figure, steps int) []geom.Pt {
	nodes := nodeIndex(fig)
	if pts, ok := simpleTraversal(fig, nodes, steps); ok {
		return pts
	}
	if pts := boundaryWalk(fig, nodes, steps); len(pts) >= 3 {
		return pts
	}
	if pts := openChain(fig, nodes, steps); len(pts) >= 3 {
		return pts
	}
	if pts := naiveOrder(fig, nodes, steps); len(pts) >= 3 {
		return pts
	}
	return nil
}

func nodeIndex(fig domain.Figure) map[string]domain.Node {
	m := make(map[string]domain.Node, len(fig.Nodes))
	for _, n := range fig.Nodes {
		m[n.ID] = n
	}
	return m
}

// edgePoints samples one edge into at least two points. Edges referencing
// missing nodes report ok=false and are skipped by the callers.
func edgePoints(nodes map[string]domain.Node, e domain.Edge, steps int) ([]geom.Pt, bool) {
	from, okF := nodes[e.From]
	to, okT := nodes[e.To]
	if !okF || !okT {
		return nil, false
	}
	if e.Kind == domain.EdgeCubic {
		c1 := from.At
		if from.HandleOut != nil {
			c1 = from.At.Add(*from.HandleOut)
		}
		c2 := to.At
		if to.HandleIn != nil {
			c2 = to.At.Add(*to.HandleIn)
		}
		return geom.CubicPoints(from.At, c1, c2, to.At, steps), true
	}
	return []geom.Pt{from.At, to.At}, true
}

// EdgePolyline samples a single edge by id into local coordinates. Nil when
// the edge is unknown or references missing nodes.
func EdgePolyline(fig domain.Figure, edgeID string, steps int) []geom.Pt {
	if steps < 1 {
		steps = DefaultSteps
	}
	nodes := nodeIndex(fig)
	for _, e := range fig.Edges {
		if e.ID != edgeID {
			continue
		}
		if pts, ok := edgePoints(nodes, e, steps); ok {
			return pts
		}
		return nil
	}
	return nil
}

// appendJoined appends src to dst, dropping the first src point when it
// coincides with the current tail.
func appendJoined(dst, src []geom.Pt) []geom.Pt {
	if len(src) == 0 {
		return dst
	}
	if len(dst) > 0 && dst[len(dst)-1].Dist(src[0]) < geom.Epsilon {
		src = src[1:]
	}
	return append(dst, src...)
}

// simpleTraversal walks a graph in which every node has at most one outgoing
// edge. ok is false when the graph branches or leaves edges unconsumed, which
// sends the caller down the fallback chain.
func simpleTraversal(fig domain.Figure, nodes map[string]domain.Node, steps int) ([]geom.Pt, bool) {
	outgoing := make(map[string]int, len(fig.Edges))
	incoming := make(map[string]int, len(fig.Edges))
	edgeFrom := make(map[string]domain.Edge, len(fig.Edges))
	usable := 0
	for _, e := range fig.Edges {
		if _, okF := nodes[e.From]; !okF {
			continue
		}
		if _, okT := nodes[e.To]; !okT {
			continue
		}
		usable++
		outgoing[e.From]++
		incoming[e.To]++
		if outgoing[e.From] > 1 {
			return nil, false
		}
		edgeFrom[e.From] = e
	}
	if usable == 0 {
		return nil, false
	}

	start := ""
	for _, n := range fig.Nodes {
		if outgoing[n.ID] == 1 && incoming[n.ID] == 0 {
			start = n.ID
			break
		}
	}
	if start == "" {
		// cycle: begin at the first edge that survived the reference check
		for _, e := range fig.Edges {
			if _, ok := edgeFrom[e.From]; ok {
				start = e.From
				break
			}
		}
	}
	if start == "" {
		return nil, false
	}

	var pts []geom.Pt
	visited := make(map[string]bool, usable)
	cur := start
	limit := 3 * len(fig.Edges)
	for iter := 0; iter <= limit; iter++ {
		e, ok := edgeFrom[cur]
		if !ok || visited[e.ID] {
			break
		}
		seg, ok := edgePoints(nodes, e, steps)
		if !ok {
			break
		}
		visited[e.ID] = true
		pts = appendJoined(pts, seg)
		cur = e.To
		if cur == start {
			break
		}
	}
	if len(visited) != usable || len(pts) < 2 {
		return nil, false
	}
	// closed loop: drop the repeated closing vertex
	if cur == start && len(pts) > 1 && pts[0].Dist(pts[len(pts)-1]) < geom.Epsilon {
		pts = pts[:len(pts)-1]
	}
	return pts, true
}

// openChain follows directed edges from the first node without incoming
// edges, for open figures whose graph is not a single chain.
func openChain(fig domain.Figure, nodes map[string]domain.Node, steps int) []geom.Pt {
	incoming := make(map[string]int, len(fig.Edges))
	for _, e := range fig.Edges {
		incoming[e.To]++
	}
	start := ""
	for _, n := range fig.Nodes {
		if incoming[n.ID] == 0 && hasOutgoing(fig, n.ID) {
			start = n.ID
			break
		}
	}
	if start == "" {
		return nil
	}
	var pts []geom.Pt
	used := make(map[string]bool, len(fig.Edges))
	cur := start
	limit := 3 * len(fig.Edges)
	for iter := 0; iter <= limit; iter++ {
		var next *domain.Edge
		for i := range fig.Edges {
			e := &fig.Edges[i]
			if e.From == cur && !used[e.ID] {
				next = e
				break
			}
		}
		if next == nil {
			break
		}
		seg, ok := edgePoints(nodes, *next, steps)
		if !ok {
			used[next.ID] = true
			continue
		}
		used[next.ID] = true
		pts = appendJoined(pts, seg)
		cur = next.To
	}
	return pts
}

func hasOutgoing(fig domain.Figure, nodeID string) bool {
	for _, e := range fig.Edges {
		if e.From == nodeID {
			return true
		}
	}
	return false
}

// naiveOrder concatenates edges as stored. Last resort; overlapping strokes
// render slightly wrong rather than not at all.
func naiveOrder(fig domain.Figure, nodes map[string]domain.Node, steps int) []geom.Pt {
	var pts []geom.Pt
	for _, e := range fig.Edges {
		seg, ok := edgePoints(nodes, e, steps)
		if !ok {
			continue
		}
		pts = appendJoined(pts, seg)
	}
	return pts
}

// Transform returns the figure's local-to-world affine transform.
func Transform(fig domain.Figure) geom.Affine {
	return geom.TRS(fig.X, fig.Y, fig.RotationDeg*math.Pi/180)
}

// InverseTransform returns the world-to-local transform.
func InverseTransform(fig domain.Figure) geom.Affine {
	return Transform(fig).Invert()
}

// LocalToWorld maps a local point into sheet coordinates.
func LocalToWorld(fig domain.Figure, p geom.Pt) geom.Pt {
	return Transform(fig).Apply(p)
}

// WorldToLocal maps a sheet point into the figure's local frame.
func WorldToLocal(fig domain.Figure, p geom.Pt) geom.Pt {
	return InverseTransform(fig).Apply(p)
}

// WorldPolyline samples the figure and maps the result into sheet
// coordinates.
func WorldPolyline(fig domain.Figure, steps int) []geom.Pt {
	pts := Polyline(fig, steps)
	if pts == nil {
		return nil
	}
	m := Transform(fig)
	out := make([]geom.Pt, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}
