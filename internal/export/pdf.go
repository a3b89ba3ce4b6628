/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/outline"
	"gopatternstudio/internal/storage"
)

// PDFOptions controls PDF export behavior.
// PDF pages are sized in points (pt); sheet units convert through the
// document's units-per-cm (1 cm = 72/2.54 pt).
// Vector text is used whenever possible; we rely on built-in Helvetica for portability.
// In later phases, font embedding can be added using TTFs.
//
// Coordinates:
// - Page origin is top-left, matching sheet coordinates.
// - One PDF page is emitted per sheet at the sheet's own size.
// - Margin guides are drawn as hairline rectangles when requested.
//
// Piece outlines are stroked as line segments of sampled polylines; curves
// are flattened at the engine's default resolution.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	IncludeGuides bool
	EmbedFonts    bool    // reserved; not used yet
	Margin        float64 // guide inset in sheet units; 0 uses 1 cm
	GuideColor    domain.Color
	CutColor      domain.Color
	SeamColor     domain.Color
	Sheets        []int // if empty, export all sheets
}

// ExportPatternPDF exports the document's sheets as a single multi-page PDF placed at outPath.
func ExportPatternPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	doc := &ph.Doc
	if len(doc.Sheets) == 0 {
		return fmt.Errorf("document has no sheets")
	}

	// Default styles
	guideCol := opt.GuideColor
	if guideCol.A == 0 && guideCol.R == 0 && guideCol.G == 0 && guideCol.B == 0 {
		guideCol = domain.Color{R: 255, G: 0, B: 0, A: 255}
	}
	cutCol := opt.CutColor
	if cutCol.A == 0 && cutCol.R == 0 && cutCol.G == 0 && cutCol.B == 0 {
		cutCol = domain.Color{R: 0, G: 0, B: 0, A: 255}
	}
	seamCol := opt.SeamColor
	if seamCol.A == 0 && seamCol.R == 0 && seamCol.G == 0 && seamCol.B == 0 {
		seamCol = domain.Color{R: 0, G: 0, B: 0, A: 255}
	}

	upc := unitsPerCm(doc)
	ptPerUnit := 72.0 / (2.54 * upc)
	margin := opt.Margin
	if margin <= 0 {
		margin = 1 * upc
	}

	// Page size follows each sheet; the init size is only the default
	first := doc.Sheets[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width * ptPerUnit, Ht: first.Height * ptPerUnit},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s - Pattern Sheets", doc.Name), false)
	pdf.SetAuthor("Go Pattern Studio", false)

	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "", 12)

	sheets := sheetIndexes(len(doc.Sheets), opt.Sheets)
	for _, sidx := range sheets {
		if sidx < 0 || sidx >= len(doc.Sheets) {
			continue
		}
		sh := doc.Sheets[sidx]
		pageW := sh.Width * ptPerUnit
		pageH := sh.Height * ptPerUnit
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

		// Sheet border and margin guides if requested
		if opt.IncludeGuides {
			setDrawColor(pdf, guideCol)
			pdf.SetLineWidth(0.2)
			pdf.Rect(0, 0, pageW, pageH, "D")
			pdf.Rect(margin*ptPerUnit, margin*ptPerUnit, pageW-2*margin*ptPerUnit, pageH-2*margin*ptPerUnit, "D")
		}

		for _, fig := range sortedFigures(sh) {
			for _, p := range figurePaths(fig, outline.DefaultSteps) {
				col, w, dash := strokeFor(p, upc, cutCol, seamCol, guideCol)
				setDrawColor(pdf, col)
				pdf.SetLineWidth(w * ptPerUnit)
				if len(dash) > 0 {
					pdf.SetDashPattern(scaleDash(dash, ptPerUnit), 0)
				} else {
					pdf.SetDashPattern([]float64{}, 0)
				}
				strokePDFPath(pdf, p, ptPerUnit)
			}
			pdf.SetDashPattern([]float64{}, 0)
			for _, t := range figureTexts(fig) {
				drawPDFText(pdf, t, ptPerUnit)
			}
		}

		for _, t := range labelPlacements(sh, upc, outline.DefaultSteps) {
			drawPDFText(pdf, t, ptPerUnit)
		}
	}

	// Ensure output path is under project exports folder if relative
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	// Ensure directory exists
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// strokePDFPath draws a polyline segment by segment, closing back to the
// first point for rings.
func strokePDFPath(pdf *gofpdf.Fpdf, p drawPath, s float64) {
	for i := 0; i+1 < len(p.pts); i++ {
		a, b := p.pts[i], p.pts[i+1]
		pdf.Line(a.X*s, a.Y*s, b.X*s, b.Y*s)
	}
	if p.closed && len(p.pts) > 2 {
		a, b := p.pts[len(p.pts)-1], p.pts[0]
		pdf.Line(a.X*s, a.Y*s, b.X*s, b.Y*s)
	}
}

func drawPDFText(pdf *gofpdf.Fpdf, t drawText, s float64) {
	size := t.size * s
	if size <= 0 {
		size = 12
	}
	pdf.SetFont("Helvetica", "", size)
	pdf.SetTextColor(0, 0, 0)
	x := t.at.X * s
	if t.centered {
		x -= pdf.GetStringWidth(t.text) / 2
	}
	pdf.Text(x, t.at.Y*s, t.text)
}

func scaleDash(dash []float64, s float64) []float64 {
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * s
	}
	return out
}

func sheetIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

func setDrawColor(pdf *gofpdf.Fpdf, c domain.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
