/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dart folds triangular darts into a figure's base contour. All
// operations return a new figure; the pristine contour is kept (explicit
// points, primitive parameters or a pre-dart snapshot) so repeated edits
// recompute from it instead of compounding on already-spliced geometry.
package dart

import (
	"math"
	"sort"
	"strconv"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
)

const (
	// MinDepth is the smallest accepted apex depth.
	MinDepth = 0.2
	// MinOpening is the smallest accepted total opening width.
	MinOpening = 0.1
)

// BasePolygon returns the contour darts are computed against: the figure's
// explicit point list, else its primitive outline, else the preserved
// pre-dart snapshot, else the sampled edge graph. Nil when no closed contour
// with at least 3 points exists.
func BasePolygon(fig domain.Figure, steps int) []geom.Pt {
	if len(fig.Points) >= 3 {
		return domain.ClonePoints(fig.Points)
	}
	switch fig.Kind {
	case domain.FigureRect:
		if pts := outline.RectPoints(fig.Width, fig.Height); pts != nil {
			return pts
		}
	case domain.FigureCircle:
		if pts := outline.CirclePoints(fig.Radius, outline.DefaultCircleSegments); pts != nil {
			return pts
		}
	}
	if len(fig.Base) >= 3 {
		return domain.ClonePoints(fig.Base)
	}
	pts := geom.DedupePoints(outline.Polyline(fig, steps), geom.Epsilon)
	if len(pts) < 3 {
		return nil
	}
	return pts
}

// Insert adds a dart and rebuilds the figure's contour graph. Missing ids
// are assigned, out-of-range parameters are clamped to the documented
// floors, and a frozen dart without an anchor point freezes at its current
// arclength position.
func Insert(fig domain.Figure, d domain.Dart, steps int) (domain.Figure, bool) {
	out := fig.Clone()
	base := BasePolygon(out, steps)
	if base == nil {
		return domain.Figure{}, false
	}
	d = sanitize(d)
	if d.ID == "" {
		d.ID = nextDartID(out.Darts)
	}
	if d.Mode == domain.DartFrozen && d.Anchor == nil {
		if p, _, _, ok := geom.PointAtFraction(base, true, d.T); ok {
			at := p
			d.Anchor = &at
		}
	}
	out.Darts = append(out.Darts, d)
	return recompute(out, base, steps)
}

// Update replaces the dart with the same id and recomputes. False when the
// id is unknown or the contour vanished.
func Update(fig domain.Figure, d domain.Dart, steps int) (domain.Figure, bool) {
	out := fig.Clone()
	idx := -1
	for i := range out.Darts {
		if out.Darts[i].ID == d.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Figure{}, false
	}
	base := BasePolygon(out, steps)
	if base == nil {
		return domain.Figure{}, false
	}
	out.Darts[idx] = sanitize(d)
	return recompute(out, base, steps)
}

// Remove deletes one dart. Removing the last dart restores the pristine base
// polygon exactly; removing one of several recomputes from the rest.
func Remove(fig domain.Figure, id string, steps int) (domain.Figure, bool) {
	out := fig.Clone()
	kept := out.Darts[:0]
	removed := false
	for _, d := range out.Darts {
		if d.ID == id && !removed {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return domain.Figure{}, false
	}
	out.Darts = kept
	if len(out.Darts) == 0 {
		return restorePristine(out), true
	}
	base := BasePolygon(out, steps)
	if base == nil {
		return domain.Figure{}, false
	}
	return recompute(out, base, steps)
}

// Recompute rebuilds all dart geometry against the current base contour,
// for callers that edited the contour itself.
func Recompute(fig domain.Figure, steps int) (domain.Figure, bool) {
	out := fig.Clone()
	if len(out.Darts) == 0 {
		return out, true
	}
	base := BasePolygon(out, steps)
	if base == nil {
		return domain.Figure{}, false
	}
	return recompute(out, base, steps)
}

// restorePristine drops the spliced graph. Figures authored as a graph keep
// the snapshot as their explicit contour; the original graph was collapsed
// on first insert and is not recoverable.
func restorePristine(out domain.Figure) domain.Figure {
	if len(out.Points) == 0 && out.Kind != domain.FigureRect && out.Kind != domain.FigureCircle {
		out.Points = out.Base
	}
	out.Nodes = nil
	out.Edges = nil
	out.Base = nil
	return out
}

func sanitize(d domain.Dart) domain.Dart {
	if !(d.Depth >= MinDepth) || math.IsInf(d.Depth, 0) {
		d.Depth = MinDepth
	}
	if d.Symmetric {
		w := max(d.WidthLeft, d.WidthRight)
		d.WidthLeft, d.WidthRight = w, w
	}
	half := MinOpening / 2
	if !(d.WidthLeft >= half) || math.IsInf(d.WidthLeft, 0) {
		d.WidthLeft = half
	}
	if !(d.WidthRight >= half) || math.IsInf(d.WidthRight, 0) {
		d.WidthRight = half
	}
	if d.Mode == "" {
		d.Mode = domain.DartFollow
	}
	if !(d.T >= 0) {
		d.T = 0
	} else if d.T > 1 {
		d.T = 1
	}
	return d
}

func nextDartID(darts []domain.Dart) string {
	for n := len(darts) + 1; ; n++ {
		id := "d" + strconv.Itoa(n)
		taken := false
		for _, d := range darts {
			if d.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// wedge is one dart resolved against the base polygon.
type wedge struct {
	dartIdx int
	frac    float64
	seg     int
	segT    float64
	left    geom.Pt
	apex    geom.Pt
	right   geom.Pt
}

// resolveDart locates a dart on the base polygon. False when the anchor no
// longer resolves; the caller skips that dart and keeps going.
func resolveDart(base []geom.Pt, d domain.Dart) (wedge, bool) {
	var (
		anchor geom.Pt
		seg    int
		segT   float64
		frac   float64
		ok     bool
	)
	switch d.Mode {
	case domain.DartFrozen:
		if d.Anchor == nil || !d.Anchor.Finite() {
			return wedge{}, false
		}
		anchor, seg, segT, frac, ok = geom.ProjectOntoPolygon(base, true, *d.Anchor)
	default:
		anchor, seg, segT, ok = geom.PointAtFraction(base, true, d.T)
		frac = d.T
	}
	if !ok {
		return wedge{}, false
	}

	n := len(base)
	a := base[seg]
	b := base[(seg+1)%n]
	segLen := a.Dist(b)
	if segLen < geom.Epsilon {
		return wedge{}, false
	}
	dir := b.Sub(a).Normalize()

	// half-widths clamp to the segment's own endpoints
	along := segT * segLen
	leftD := min(d.WidthLeft, along)
	rightD := min(d.WidthRight, segLen-along)
	left := anchor.Sub(dir.Mul(leftD))
	right := anchor.Add(dir.Mul(rightD))

	// inward normal: probe slightly off-segment, flip if the probe escaped
	normal := dir.Perp()
	probe := anchor.Add(normal.Mul(max(1e-6, 1e-4*segLen)))
	if !geom.PointInPolygon(probe, base) {
		normal = normal.Mul(-1)
	}
	apex := anchor.Add(normal.Mul(d.Depth))

	return wedge{frac: frac, seg: seg, segT: segT, left: left, apex: apex, right: right}, true
}

type ringEntry struct {
	pt     geom.Pt
	id     string
	kind   string
	isBase bool
}

// recompute splices every resolvable dart into the base ring and replaces
// the figure's node/edge graph with the result. out already carries the
// final dart list.
func recompute(out domain.Figure, base []geom.Pt, steps int) (domain.Figure, bool) {
	// snapshot graph-authored contours before the graph is replaced
	if len(out.Points) < 3 && out.Kind != domain.FigureRect && out.Kind != domain.FigureCircle && len(out.Base) < 3 {
		out.Base = domain.ClonePoints(base)
	}

	wedges := 0
	bySeg := make(map[int][]wedge)
	for i := range out.Darts {
		w, ok := resolveDart(base, out.Darts[i])
		if !ok {
			continue
		}
		w.dartIdx = i
		bySeg[w.seg] = append(bySeg[w.seg], w)
		wedges++
	}
	for _, ws := range bySeg {
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].segT < ws[b].segT })
	}

	n := len(base)
	entries := make([]ringEntry, 0, n+3*wedges)
	for i := 0; i < n; i++ {
		entries = append(entries, ringEntry{pt: base[i], id: out.ID + "-b" + strconv.Itoa(i), kind: domain.NodeCorner, isBase: true})
		for _, w := range bySeg[i] {
			d := &out.Darts[w.dartIdx]
			d.LeftID = d.ID + "-l"
			d.ApexID = d.ID + "-a"
			d.RightID = d.ID + "-r"
			entries = append(entries,
				ringEntry{pt: w.left, id: d.LeftID, kind: domain.NodeCorner},
				ringEntry{pt: w.apex, id: d.ApexID, kind: domain.NodeDart},
				ringEntry{pt: w.right, id: d.RightID, kind: domain.NodeCorner},
			)
		}
	}

	// a clamped wedge point can land exactly on a base vertex; the base
	// vertex yields so the dart's node ids always survive
	keep := make([]bool, len(entries))
	for i := range keep {
		keep[i] = true
	}
	for i := range entries {
		j := (i + 1) % len(entries)
		if entries[i].pt.Dist(entries[j].pt) >= geom.Epsilon {
			continue
		}
		switch {
		case entries[i].isBase && !entries[j].isBase:
			keep[i] = false
		case entries[j].isBase && !entries[i].isBase:
			keep[j] = false
		}
	}

	out.Nodes = nil
	out.Edges = nil
	var ring []ringEntry
	for i, e := range entries {
		if keep[i] {
			ring = append(ring, e)
		}
	}
	if len(ring) < 3 {
		return domain.Figure{}, false
	}
	for _, e := range ring {
		out.Nodes = append(out.Nodes, domain.Node{ID: e.id, At: e.pt, Kind: e.kind})
	}
	for i := range ring {
		j := (i + 1) % len(ring)
		out.Edges = append(out.Edges, domain.Edge{
			ID:   out.ID + "-de" + strconv.Itoa(i),
			From: ring[i].id,
			To:   ring[j].id,
			Kind: domain.EdgeLine,
		})
	}
	out.Closed = true
	return out, true
}
