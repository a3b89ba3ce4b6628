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

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

// BoundaryWalk traces the outer contour of a fused graph by always taking
// the edge with the maximum counter-clockwise turn. Polyline reaches for it
// when the graph is not a plain chain or cycle; callers that know their
// figure has fused contours can invoke it directly. Nil when the walk never
// closes or yields fewer than 3 points.
func BoundaryWalk(fig domain.Figure, steps int) []geom.Pt {
	if steps < 1 {
		steps = DefaultSteps
	}
	return boundaryWalk(fig, nodeIndex(fig), steps)
}

// boundaryWalk starts at the lowest node of degree >= 2 heading along the
// most rightward-pointing incident edge, and gives up after 3x the edge
// count iterations so malformed graphs terminate.
func boundaryWalk(fig domain.Figure, nodes map[string]domain.Node, steps int) []geom.Pt {
	type incident struct {
		edge    domain.Edge
		forward bool // true when leaving via edge.From
	}
	byNode := make(map[string][]incident)
	for _, e := range fig.Edges {
		if _, ok := nodes[e.From]; !ok {
			continue
		}
		if _, ok := nodes[e.To]; !ok {
			continue
		}
		byNode[e.From] = append(byNode[e.From], incident{edge: e, forward: true})
		byNode[e.To] = append(byNode[e.To], incident{edge: e, forward: false})
	}

	start := ""
	for _, n := range fig.Nodes {
		if len(byNode[n.ID]) < 2 {
			continue
		}
		if start == "" {
			start = n.ID
			continue
		}
		s := nodes[start]
		if n.At.Y < s.At.Y || (n.At.Y == s.At.Y && n.At.X < s.At.X) {
			start = n.ID
		}
	}
	if start == "" {
		return nil
	}

	sample := func(inc incident) []geom.Pt {
		pts, ok := edgePoints(nodes, inc.edge, steps)
		if !ok || len(pts) < 2 {
			return nil
		}
		if !inc.forward {
			rev := make([]geom.Pt, len(pts))
			for i, p := range pts {
				rev[len(pts)-1-i] = p
			}
			return rev
		}
		return pts
	}
	leaveDir := func(pts []geom.Pt) geom.Pt { return pts[1].Sub(pts[0]).Normalize() }
	arriveDir := func(pts []geom.Pt) geom.Pt {
		return pts[len(pts)-1].Sub(pts[len(pts)-2]).Normalize()
	}
	otherEnd := func(inc incident) string {
		if inc.forward {
			return inc.edge.To
		}
		return inc.edge.From
	}
	key := func(inc incident) string {
		if inc.forward {
			return inc.edge.ID + "+"
		}
		return inc.edge.ID + "-"
	}
	reverseKey := func(inc incident) string {
		if inc.forward {
			return inc.edge.ID + "-"
		}
		return inc.edge.ID + "+"
	}

	// most rightward-pointing first edge
	var first incident
	var firstPts []geom.Pt
	bestCos := math.Inf(-1)
	for _, inc := range byNode[start] {
		pts := sample(inc)
		if pts == nil {
			continue
		}
		d := leaveDir(pts)
		if d.IsZero() {
			continue
		}
		if d.X > bestCos {
			bestCos = d.X
			first = inc
			firstPts = pts
		}
	}
	if firstPts == nil {
		return nil
	}

	var out []geom.Pt
	visited := map[string]bool{key(first): true}
	out = appendJoined(out, firstPts)
	cur := otherEnd(first)
	inDir := arriveDir(firstPts)
	backKey := reverseKey(first)
	limit := 3 * len(fig.Edges)
	closed := false
	for iter := 0; iter < limit; iter++ {
		if cur == start {
			closed = true
			break
		}
		var next incident
		var nextPts []geom.Pt
		bestTurn := math.Inf(-1)
		for _, inc := range byNode[cur] {
			// An exact reversal reads as the maximum turn, so the edge we
			// arrived on is never a candidate. A vertex whose only
			// continuation is backtracking ends the walk instead.
			if visited[key(inc)] || key(inc) == backKey {
				continue
			}
			pts := sample(inc)
			if pts == nil {
				continue
			}
			d := leaveDir(pts)
			if d.IsZero() {
				continue
			}
			// Screen counter-clockwise turn; Y grows downward, so the sign
			// of the cross product flips. Maximizing it keeps the interior
			// on the walk's right side and the walk on the outer hull.
			turn := math.Atan2(-inDir.Cross(d), inDir.Dot(d))
			if turn > bestTurn {
				bestTurn = turn
				next = inc
				nextPts = pts
			}
		}
		if nextPts == nil {
			break
		}
		visited[key(next)] = true
		out = appendJoined(out, nextPts)
		cur = otherEnd(next)
		inDir = arriveDir(nextPts)
		backKey = reverseKey(next)
	}
	if !closed {
		return nil
	}
	if len(out) > 1 && out[0].Dist(out[len(out)-1]) < geom.Epsilon {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return out
}
