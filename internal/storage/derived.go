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

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/seam"
)

// UnseamedPiece identifies a closed pattern piece that has no seam allowance
// figure yet.
type UnseamedPiece struct {
	SheetID  string
	FigureID string
	Name     string
}

// SeamedSet returns the set of figure ids that already have a seam allowance
// figure derived from them anywhere in the document.
func SeamedSet(doc domain.Document) map[string]struct{} {
	s := make(map[string]struct{})
	for _, sh := range doc.Sheets {
		for _, fig := range sh.Figures {
			if fig.Seam == nil || fig.Seam.ParentID == "" {
				continue
			}
			s[fig.Seam.ParentID] = struct{}{}
		}
	}
	return s
}

// ComputeUnseamed lists closed pieces that are not covered by any seam
// allowance figure. Text figures and seam figures themselves are never
// candidates.
func ComputeUnseamed(doc domain.Document) []UnseamedPiece {
	seamed := SeamedSet(doc)
	var out []UnseamedPiece
	for _, sh := range doc.Sheets {
		for _, fig := range sh.Figures {
			if fig.Kind == domain.FigureSeam || fig.Kind == domain.FigureText {
				continue
			}
			if !closedFigure(fig) {
				continue
			}
			if _, ok := seamed[fig.ID]; ok {
				continue
			}
			out = append(out, UnseamedPiece{SheetID: sh.ID, FigureID: fig.ID, Name: fig.Name})
		}
	}
	return out
}

// ComputeStaleSeams lists seam figure ids whose stored signature no longer
// matches the parent's current outline, plus seams whose parent is gone.
func ComputeStaleSeams(doc domain.Document, steps int) []string {
	parents := make(map[string]domain.Figure)
	for _, sh := range doc.Sheets {
		for _, fig := range sh.Figures {
			parents[fig.ID] = fig
		}
	}
	var out []string
	for _, sh := range doc.Sheets {
		for _, fig := range sh.Figures {
			if fig.Seam == nil {
				continue
			}
			parent, ok := parents[fig.Seam.ParentID]
			if !ok || seam.Stale(fig, parent, steps) {
				out = append(out, fig.ID)
			}
		}
	}
	return out
}

// AttachSeam places or replaces a seam allowance figure on the given sheet.
// The figure must carry seam metadata and its parent must live on the same
// sheet.
func AttachSeam(ph *ProjectHandle, sheetID string, seamFig domain.Figure) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if seamFig.Seam == nil || seamFig.Seam.ParentID == "" {
		return fmt.Errorf("figure %s carries no seam metadata", seamFig.ID)
	}
	sh := sheetByID(ph, sheetID)
	if sh == nil {
		return fmt.Errorf("sheet %s not found", sheetID)
	}
	parentFound := false
	for i := range sh.Figures {
		if sh.Figures[i].ID == seamFig.Seam.ParentID {
			parentFound = true
			break
		}
	}
	if !parentFound {
		return fmt.Errorf("seam parent %s not found on sheet %s", seamFig.Seam.ParentID, sheetID)
	}
	for i := range sh.Figures {
		if sh.Figures[i].ID == seamFig.ID {
			sh.Figures[i] = seamFig
			return nil
		}
	}
	sh.Figures = append(sh.Figures, seamFig)
	return nil
}
