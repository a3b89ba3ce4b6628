/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package seam extracts outer loops from figure edge graphs and generates
// parallel offset contours (seam allowances). Every operation degrades to
// "no result" on malformed input; callers treat a nil contour as nothing to
// draw.
package seam

import (
	"fmt"
	"math"
	"sort"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
)

// positions are bucketed when fusing vertices and deduplicating edges, so
// overlapping strokes with separately authored nodes still meet.
func posKey(p geom.Pt) string {
	return fmt.Sprintf("%.6f|%.6f", geom.FloatRound(p.X, 6), geom.FloatRound(p.Y, 6))
}

// tracedEdge is one usable edge after the reference check and dedupe pass.
type tracedEdge struct {
	id      string
	fromKey string
	toKey   string
	pts     []geom.Pt // forward orientation samples
	length  float64
}

// dedupeEdges drops edges referencing missing nodes, zero-length edges, and
// duplicated strokes sharing both endpoint positions, preferring the longer
// stroke of each duplicate pair.
func dedupeEdges(fig domain.Figure, steps int) []tracedEdge {
	nodes := make(map[string]domain.Node, len(fig.Nodes))
	for _, n := range fig.Nodes {
		nodes[n.ID] = n
	}
	byPair := make(map[string]tracedEdge)
	order := make([]string, 0, len(fig.Edges))
	for _, e := range fig.Edges {
		from, okF := nodes[e.From]
		to, okT := nodes[e.To]
		if !okF || !okT {
			continue
		}
		kA, kB := posKey(from.At), posKey(to.At)
		if kA == kB {
			continue // zero-length stroke
		}
		pts := sampleEdge(from, to, e, steps)
		te := tracedEdge{id: e.ID, fromKey: kA, toKey: kB, pts: pts, length: geom.PerimeterLength(pts, false)}
		pair := kA + "&" + kB
		if kB < kA {
			pair = kB + "&" + kA
		}
		prev, dup := byPair[pair]
		if !dup {
			byPair[pair] = te
			order = append(order, pair)
			continue
		}
		if te.length > prev.length {
			byPair[pair] = te
		}
	}
	out := make([]tracedEdge, 0, len(order))
	for _, pair := range order {
		out = append(out, byPair[pair])
	}
	return out
}

func sampleEdge(from, to domain.Node, e domain.Edge, steps int) []geom.Pt {
	if e.Kind == domain.EdgeCubic {
		c1 := from.At
		if from.HandleOut != nil {
			c1 = from.At.Add(*from.HandleOut)
		}
		c2 := to.At
		if to.HandleIn != nil {
			c2 = to.At.Add(*to.HandleIn)
		}
		return geom.CubicPoints(from.At, c1, c2, to.At, steps)
	}
	return []geom.Pt{from.At, to.At}
}

// half is a directed half-edge of the planar graph.
type half struct {
	edge  int // index into the deduped edge list
	fwd   bool
	from  string // position keys
	to    string
	pts   []geom.Pt
	angle float64 // leave direction at from
	twin  int
}

// Face is a closed region traced from the graph, with its sampled contour,
// the source edge id behind every contour segment, and its signed area.
type Face struct {
	Points  []geom.Pt
	EdgeIDs []string // one per contour segment, EdgeIDs[i] covers Points[i]..Points[i+1]
	Area    float64
}

// TraceFaces decomposes the figure's edge graph into the closed faces of its
// planar embedding. Sorting each vertex's outgoing half-edges by polar angle
// and always continuing via the next half-edge clockwise around the
// destination makes every face come out as one cycle; a hard iteration
// ceiling keeps malformed graphs from spinning.
func TraceFaces(fig domain.Figure, steps int) []Face {
	edges := dedupeEdges(fig, steps)
	if len(edges) == 0 {
		return nil
	}

	halves := make([]half, 0, 2*len(edges))
	for i, te := range edges {
		fwd := half{edge: i, fwd: true, from: te.fromKey, to: te.toKey, pts: te.pts}
		rev := half{edge: i, fwd: false, from: te.toKey, to: te.fromKey, pts: reversePts(te.pts)}
		fwd.angle = leaveAngle(fwd.pts)
		rev.angle = leaveAngle(rev.pts)
		fwd.twin = len(halves) + 1
		rev.twin = len(halves)
		halves = append(halves, fwd, rev)
	}

	outgoing := make(map[string][]int)
	for i, h := range halves {
		outgoing[h.from] = append(outgoing[h.from], i)
	}
	for _, list := range outgoing {
		sort.Slice(list, func(a, b int) bool { return halves[list[a]].angle < halves[list[b]].angle })
	}
	// position of each half within its vertex rotation
	slot := make([]int, len(halves))
	for _, list := range outgoing {
		for idx, hi := range list {
			slot[hi] = idx
		}
	}

	next := func(hi int) int {
		h := halves[hi]
		list := outgoing[h.to]
		if len(list) == 0 {
			return -1
		}
		// ascending polar angle in a Y-down frame is a clockwise rotation
		return list[(slot[h.twin]+1)%len(list)]
	}

	visited := make([]bool, len(halves))
	var faces []Face
	limit := 3 * len(halves)
	for start := range halves {
		if visited[start] {
			continue
		}
		cycle := []int{start}
		visited[start] = true
		cur := next(start)
		ok := true
		for iter := 0; cur != start; iter++ {
			if cur < 0 || iter > limit || visited[cur] {
				ok = false
				break
			}
			visited[cur] = true
			cycle = append(cycle, cur)
			cur = next(cur)
		}
		if !ok {
			continue
		}

		// assemble segment-wise so every ring segment knows its source edge
		var pts []geom.Pt
		var ids []string
		for _, hi := range cycle {
			h := halves[hi]
			for k := 1; k < len(h.pts); k++ {
				a, b := h.pts[k-1], h.pts[k]
				if a.Dist(b) < geom.Epsilon {
					continue
				}
				if len(pts) == 0 {
					pts = append(pts, a)
				}
				pts = append(pts, b)
				ids = append(ids, edges[h.edge].id)
			}
		}
		if len(pts) > 1 && pts[0].Dist(pts[len(pts)-1]) < geom.Epsilon {
			pts = pts[:len(pts)-1] // ids[len-1] stays: it covers the closing segment
		}
		if len(pts) < 3 {
			continue
		}
		faces = append(faces, Face{Points: pts, EdgeIDs: ids, Area: geom.SignedArea(pts)})
	}
	return faces
}

func reversePts(pts []geom.Pt) []geom.Pt {
	out := make([]geom.Pt, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func leaveAngle(pts []geom.Pt) float64 {
	if len(pts) < 2 {
		return 0
	}
	d := pts[1].Sub(pts[0])
	return math.Atan2(d.Y, d.X)
}

// OuterLoop extracts the figure's single outer contour: the traced face of
// maximum absolute signed area. Figures without an edge graph fall back to
// their sampled polyline. nil means no closed loop exists.
func OuterLoop(fig domain.Figure, steps int) []geom.Pt {
	loop, _ := OuterLoopEdges(fig, steps)
	return loop
}

// OuterLoopEdges additionally reports the source edge id per contour
// segment, which per-edge offsets need. The ids slice is nil for figures
// without an edge graph.
func OuterLoopEdges(fig domain.Figure, steps int) ([]geom.Pt, []string) {
	if len(fig.Edges) == 0 {
		pts := outline.Polyline(fig, steps)
		pts = geom.DedupePoints(pts, geom.Epsilon)
		if len(pts) < 3 {
			return nil, nil
		}
		return pts, nil
	}
	faces := TraceFaces(fig, steps)
	best := -1
	for i, f := range faces {
		if best < 0 || math.Abs(f.Area) > math.Abs(faces[best].Area) {
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}
	pts := geom.DedupePoints(faces[best].Points, geom.Epsilon)
	if len(pts) < 3 {
		return nil, nil
	}
	if len(pts) == len(faces[best].Points) {
		return pts, faces[best].EdgeIDs
	}
	// dedupe changed the vertex count; re-derive ids conservatively
	return pts, nil
}
