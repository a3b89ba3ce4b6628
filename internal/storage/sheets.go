/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"
	"sort"

	"gopatternstudio/internal/domain"
)

// EnsureSheet returns a pointer to the sheet with the given id, creating it if
// it does not exist yet. New sheets are appended with an empty figure list and
// a default drafting size.
func EnsureSheet(ph *ProjectHandle, sheetID string) (*domain.Sheet, error) {
	if ph == nil {
		return nil, fmt.Errorf("project handle is nil")
	}
	if sheetID == "" {
		return nil, fmt.Errorf("sheet id is required")
	}
	for i := range ph.Doc.Sheets {
		if ph.Doc.Sheets[i].ID == sheetID {
			return &ph.Doc.Sheets[i], nil
		}
	}
	ph.Doc.Sheets = append(ph.Doc.Sheets, domain.Sheet{
		ID:      sheetID,
		Width:   120,
		Height:  80,
		Figures: []domain.Figure{},
	})
	return &ph.Doc.Sheets[len(ph.Doc.Sheets)-1], nil
}

// NextFigureID returns a unique figure ID like "f1", "f2", ... not used on the given sheet.
func NextFigureID(sh *domain.Sheet) string {
	if sh == nil {
		return "f1"
	}
	maxN := 0
	exists := map[string]struct{}{}
	for _, f := range sh.Figures {
		exists[f.ID] = struct{}{}
		var n int
		if _, err := fmt.Sscanf(f.ID, "f%d", &n); err == nil {
			if n > maxN {
				maxN = n
			}
		}
	}
	for n := maxN + 1; n < maxN+10000; n++ {
		id := fmt.Sprintf("f%d", n)
		if _, ok := exists[id]; !ok {
			return id
		}
	}
	return fmt.Sprintf("f%d", maxN+1)
}

// AddFigure places a new figure on the given sheet and assigns a zOrder after
// the last. If fig.ID is empty, a unique one will be generated. Returns the
// placed figure.
func AddFigure(ph *ProjectHandle, sheetID string, fig domain.Figure) (domain.Figure, error) {
	sh, err := EnsureSheet(ph, sheetID)
	if err != nil {
		return domain.Figure{}, err
	}
	if fig.ID == "" {
		fig.ID = NextFigureID(sh)
	} else {
		for _, f := range sh.Figures {
			if f.ID == fig.ID {
				return domain.Figure{}, fmt.Errorf("figure id %s already exists on sheet %s", fig.ID, sheetID)
			}
		}
	}
	maxZ := -1
	for _, f := range sh.Figures {
		if f.ZOrder > maxZ {
			maxZ = f.ZOrder
		}
	}
	fig.ZOrder = maxZ + 1
	sh.Figures = append(sh.Figures, fig)
	return fig, nil
}

// ReplaceFigure swaps the stored figure with the same id for the given one.
// Used after engine operations, which always return new figure values.
func ReplaceFigure(ph *ProjectHandle, sheetID string, fig domain.Figure) error {
	_, idx, _, err := findFigure(ph, sheetID, fig.ID)
	if err != nil {
		return err
	}
	sh := sheetByID(ph, sheetID)
	sh.Figures[idx] = fig
	return nil
}

// RemoveFigure deletes a figure from the sheet. Derived seam figures pointing
// at it are left in place; staleness detection flags them.
func RemoveFigure(ph *ProjectHandle, sheetID, figureID string) error {
	sh, idx, _, err := findFigure(ph, sheetID, figureID)
	if err != nil {
		return err
	}
	sh.Figures = append(sh.Figures[:idx], sh.Figures[idx+1:]...)
	return nil
}

// findFigure returns sheet pointer, figure index and pointer, or error.
func findFigure(ph *ProjectHandle, sheetID, figureID string) (*domain.Sheet, int, *domain.Figure, error) {
	if ph == nil {
		return nil, -1, nil, fmt.Errorf("project handle is nil")
	}
	for i := range ph.Doc.Sheets {
		sh := &ph.Doc.Sheets[i]
		if sh.ID != sheetID {
			continue
		}
		for k := range sh.Figures {
			if sh.Figures[k].ID == figureID {
				return sh, k, &sh.Figures[k], nil
			}
		}
		return sh, -1, nil, fmt.Errorf("figure %s not found on sheet %s", figureID, sheetID)
	}
	return nil, -1, nil, fmt.Errorf("sheet %s not found", sheetID)
}

func sheetByID(ph *ProjectHandle, sheetID string) *domain.Sheet {
	for i := range ph.Doc.Sheets {
		if ph.Doc.Sheets[i].ID == sheetID {
			return &ph.Doc.Sheets[i]
		}
	}
	return nil
}

// MoveFigureZ moves the figure up or down in zOrder by delta (+1 moves up/top, -1 moves down/back).
// It adjusts other figures' zOrder to keep a dense sequence starting at 0, then resorts the slice by zOrder.
func MoveFigureZ(ph *ProjectHandle, sheetID, figureID string, delta int) error {
	sh, _, fg, err := findFigure(ph, sheetID, figureID)
	if err != nil {
		return err
	}
	order := make([]*domain.Figure, len(sh.Figures))
	for i := range sh.Figures {
		order[i] = &sh.Figures[i]
	}
	sort.Slice(order, func(i, j int) bool { return order[i].ZOrder < order[j].ZOrder })
	idx := -1
	for i, f := range order {
		if f == fg {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("internal: figure not in order list")
	}
	newIdx := idx + delta
	if newIdx < 0 {
		newIdx = 0
	}
	if newIdx >= len(order) {
		newIdx = len(order) - 1
	}
	if newIdx == idx {
		return nil
	}
	f := order[idx]
	if newIdx < idx {
		copy(order[newIdx+1:idx+1], order[newIdx:idx])
		order[newIdx] = f
	} else {
		copy(order[idx:newIdx], order[idx+1:newIdx+1])
		order[newIdx] = f
	}
	// reassign zOrder 0..n-1 in new order
	for i, it := range order {
		it.ZOrder = i
	}
	// also reorder the slice to match zOrder for deterministic serialization
	sort.Slice(sh.Figures, func(i, j int) bool { return sh.Figures[i].ZOrder < sh.Figures[j].ZOrder })
	return nil
}

// UpdateFigureMeta updates figure ID (if non-empty and unique) plus Name and
// Notes. When the id changes, seam figures referencing the old id follow it.
func UpdateFigureMeta(ph *ProjectHandle, sheetID, figureID, newID, name, notes string) error {
	sh, _, fg, err := findFigure(ph, sheetID, figureID)
	if err != nil {
		return err
	}
	if newID != "" && newID != fg.ID {
		for _, f := range sh.Figures {
			if f.ID == newID {
				return fmt.Errorf("figure id %s already exists on sheet %s", newID, sheetID)
			}
		}
		old := fg.ID
		fg.ID = newID
		for i := range sh.Figures {
			if s := sh.Figures[i].Seam; s != nil && s.ParentID == old {
				s.ParentID = newID
			}
		}
	}
	if name != "" {
		fg.Name = name
	}
	fg.Notes = notes
	return nil
}
