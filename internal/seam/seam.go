/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package seam

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"strconv"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

// Generate derives a seam allowance figure from parent at a uniform offset,
// in the parent's local frame. Per-edge allowances stored on the parent's
// edges override the uniform distance. Returns false when the parent has no
// usable outer contour or the offset collapses it.
func Generate(parent domain.Figure, offset float64, steps int) (domain.Figure, bool) {
	return GeneratePerEdge(parent, offset, nil, steps)
}

// GeneratePerEdge derives a seam allowance figure with explicit per-edge
// distances. Resolution order per contour segment: the perEdge entry for the
// segment's source edge, then the edge's own Allowance, then fallback. A
// non-positive or non-finite resolved distance skips that edge, splitting
// the allowance into separate strips.
func GeneratePerEdge(parent domain.Figure, fallback float64, perEdge map[string]float64, steps int) (domain.Figure, bool) {
	loop, ids := OuterLoopEdges(parent, steps)
	if len(loop) < 3 {
		return domain.Figure{}, false
	}
	dists, varied := effectiveDistances(parent, len(loop), ids, fallback, perEdge)

	var strips [][]geom.Pt
	closed := false
	if !varied {
		ring := Offset(loop, fallback)
		if ring == nil {
			return domain.Figure{}, false
		}
		strips = [][]geom.Pt{ring}
		closed = true
	} else {
		allKept := true
		for _, d := range dists {
			if !(d > 0) || math.IsInf(d, 0) {
				allKept = false
				break
			}
		}
		strips = OffsetEdges(loop, dists)
		if len(strips) == 0 {
			return domain.Figure{}, false
		}
		closed = allKept && len(strips) == 1
	}

	sig := SignatureOf(loop, dists)
	return seamFigure(parent, strips, closed, fallback, perEdge, sig), true
}

// effectiveDistances resolves one distance per contour segment. varied
// reports whether any segment deviates from fallback.
func effectiveDistances(parent domain.Figure, n int, ids []string, fallback float64, perEdge map[string]float64) ([]float64, bool) {
	var allow map[string]float64
	for _, e := range parent.Edges {
		if e.Allowance > 0 {
			if allow == nil {
				allow = make(map[string]float64)
			}
			allow[e.ID] = e.Allowance
		}
	}
	dists := make([]float64, n)
	varied := false
	for i := range dists {
		d := fallback
		if ids != nil {
			if v, ok := perEdge[ids[i]]; ok {
				d = v
			} else if v, ok := allow[ids[i]]; ok {
				d = v
			}
		}
		dists[i] = d
		if d != fallback {
			varied = true
		}
	}
	return dists, varied
}

func seamFigure(parent domain.Figure, strips [][]geom.Pt, closed bool, offset float64, perEdge map[string]float64, sig string) domain.Figure {
	fig := domain.Figure{
		ID:          parent.ID + "-seam",
		Name:        seamName(parent.Name),
		Kind:        domain.FigureSeam,
		X:           parent.X,
		Y:           parent.Y,
		RotationDeg: parent.RotationDeg,
		ZOrder:      parent.ZOrder - 1,
	}
	if closed && len(strips) == 1 {
		fig.Closed = true
		fig.Points = domain.ClonePoints(strips[0])
	} else {
		for si, strip := range strips {
			var prev string
			for pi, p := range strip {
				id := fig.ID + "-s" + strconv.Itoa(si) + "n" + strconv.Itoa(pi)
				fig.Nodes = append(fig.Nodes, domain.Node{ID: id, At: p, Kind: domain.NodeCorner})
				if prev != "" {
					fig.Edges = append(fig.Edges, domain.Edge{
						ID:   fig.ID + "-s" + strconv.Itoa(si) + "e" + strconv.Itoa(pi-1),
						From: prev,
						To:   id,
						Kind: domain.EdgeLine,
					})
				}
				prev = id
			}
		}
	}
	var pe map[string]float64
	if len(perEdge) > 0 {
		pe = make(map[string]float64, len(perEdge))
		for k, v := range perEdge {
			pe[k] = v
		}
	}
	fig.Seam = &domain.SeamInfo{
		ParentID:  parent.ID,
		Offset:    offset,
		PerEdge:   pe,
		Signature: sig,
	}
	return fig
}

func seamName(parent string) string {
	if parent == "" {
		return "seam"
	}
	return parent + " seam"
}

// SignatureOf fingerprints a contour and its offset distances. Seam figures
// store it so edits to the parent are detectable without diffing geometry.
func SignatureOf(loop []geom.Pt, dists []float64) string {
	h := fnv.New64a()
	var buf [8]byte
	write := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	write(float64(len(loop)))
	for _, p := range loop {
		write(p.X)
		write(p.Y)
	}
	write(float64(len(dists)))
	for _, d := range dists {
		write(d)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Stale reports whether the seam figure no longer matches its parent's
// current contour or allowance settings. Unresolvable parents (missing seam
// info, mismatched IDs, vanished contours) count as stale.
func Stale(seamFig, parent domain.Figure, steps int) bool {
	if seamFig.Seam == nil || seamFig.Seam.ParentID != parent.ID {
		return true
	}
	loop, ids := OuterLoopEdges(parent, steps)
	if len(loop) < 3 {
		return true
	}
	dists, _ := effectiveDistances(parent, len(loop), ids, seamFig.Seam.Offset, seamFig.Seam.PerEdge)
	return SignatureOf(loop, dists) != seamFig.Seam.Signature
}

// Regenerate rebuilds a stale seam figure from its parent, keeping the seam
// figure's identity and stacking position.
func Regenerate(seamFig, parent domain.Figure, steps int) (domain.Figure, bool) {
	if seamFig.Seam == nil {
		return domain.Figure{}, false
	}
	fig, ok := GeneratePerEdge(parent, seamFig.Seam.Offset, seamFig.Seam.PerEdge, steps)
	if !ok {
		return domain.Figure{}, false
	}
	fig.ID = seamFig.ID
	if seamFig.Name != "" {
		fig.Name = seamFig.Name
	}
	fig.ZOrder = seamFig.ZOrder
	fig.Seam.ParentID = parent.ID
	return fig, true
}

// Strips returns the drawable polylines of a seam figure in its local
// frame: the single closed ring, or each open run when edges were skipped.
func Strips(fig domain.Figure) [][]geom.Pt {
	if len(fig.Points) >= 2 {
		return [][]geom.Pt{domain.ClonePoints(fig.Points)}
	}
	if len(fig.Nodes) == 0 || len(fig.Edges) == 0 {
		return nil
	}
	byID := make(map[string]geom.Pt, len(fig.Nodes))
	for _, nd := range fig.Nodes {
		byID[nd.ID] = nd.At
	}
	next := make(map[string]domain.Edge, len(fig.Edges))
	indeg := make(map[string]int)
	for _, e := range fig.Edges {
		if _, ok := byID[e.From]; !ok {
			continue
		}
		if _, ok := byID[e.To]; !ok {
			continue
		}
		next[e.From] = e
		indeg[e.To]++
	}
	var strips [][]geom.Pt
	limit := 3 * len(fig.Edges)
	for _, nd := range fig.Nodes {
		if indeg[nd.ID] != 0 {
			continue
		}
		e, ok := next[nd.ID]
		if !ok {
			continue
		}
		strip := []geom.Pt{byID[nd.ID]}
		for hops := 0; ok && hops < limit; hops++ {
			strip = append(strip, byID[e.To])
			e, ok = next[e.To]
		}
		if len(strip) >= 2 {
			strips = append(strips, strip)
		}
	}
	return strips
}
