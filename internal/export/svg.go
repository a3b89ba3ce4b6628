/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
	"gopatternstudio/internal/storage"
)

// SVGOptions controls SVG export behavior.
// - DPI defines the physical pixel size; width/height attributes use pixels derived from DPI.
// - The coordinate system matches the sheet (drawing units). A viewBox is provided to scale.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	IncludeGuides bool
	DPI           int
	Margin        float64 // guide inset in sheet units; 0 uses 1 cm
	CutColor      domain.Color
	SeamColor     domain.Color
	GuideColor    domain.Color
	Sheets        []int
}

// ExportSheetSVGs exports each sheet of the document as a separate SVG file.
// Files are named sheet-<n>.svg under outDir or the project's exports folder.
func ExportSheetSVGs(ph *storage.ProjectHandle, outDir string, opt SVGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	doc := &ph.Doc

	// Defaults
	cutCol := opt.CutColor
	if cutCol.A == 0 && cutCol.R == 0 && cutCol.G == 0 && cutCol.B == 0 {
		cutCol = domain.Color{R: 0, G: 0, B: 0, A: 255}
	}
	seamCol := opt.SeamColor
	if seamCol.A == 0 && seamCol.R == 0 && seamCol.G == 0 && seamCol.B == 0 {
		seamCol = domain.Color{R: 0, G: 0, B: 0, A: 255}
	}
	guideCol := opt.GuideColor
	if guideCol.A == 0 && guideCol.R == 0 && guideCol.G == 0 && guideCol.B == 0 {
		guideCol = domain.Color{R: 255, G: 0, B: 0, A: 255}
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	upc := unitsPerCm(doc)
	margin := opt.Margin
	if margin <= 0 {
		margin = 1 * upc
	}

	// Derived pixel size for width/height attributes
	pxPerUnit := float64(dpi) / (2.54 * upc)
	hair := 0.02 * upc

	// Resolve output directory
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(ph.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	sheets := sheetIndexes(len(doc.Sheets), opt.Sheets)
	for _, sidx := range sheets {
		if sidx < 0 || sidx >= len(doc.Sheets) {
			continue
		}
		sh := doc.Sheets[sidx]

		pxW := int(math.Round(sh.Width * pxPerUnit))
		pxH := int(math.Round(sh.Height * pxPerUnit))

		var buf bytes.Buffer
		var werr error
		wf := func(format string, args ...any) {
			if werr != nil {
				return
			}
			_, werr = fmt.Fprintf(&buf, format, args...)
		}

		wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, sh.Width, sh.Height)
		// Background white
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", sh.Width, sh.Height)

		if opt.IncludeGuides {
			gc := svgColor(guideCol)
			wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", sh.Width, sh.Height, gc, hair)
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", margin, margin, sh.Width-2*margin, sh.Height-2*margin, gc, hair)
		}

		for _, fig := range sortedFigures(sh) {
			for _, p := range figurePaths(fig, outline.DefaultSteps) {
				col, w, dash := strokeFor(p, upc, cutCol, seamCol, guideCol)
				wf("  <path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"%s/>\n", pathData(p.pts, p.closed), svgColor(col), w, dashAttr(dash))
			}
			for _, t := range figureTexts(fig) {
				writeSVGText(wf, t)
			}
		}

		for _, t := range labelPlacements(sh, upc, outline.DefaultSteps) {
			writeSVGText(wf, t)
		}

		wf("</svg>\n")

		if werr != nil {
			return fmt.Errorf("build svg: %w", werr)
		}

		name := filepath.Join(outDir, fmt.Sprintf("sheet-%d.svg", sidx+1))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func writeSVGText(wf func(string, ...any), t drawText) {
	// We don't embed fonts here; the font family is a hint only.
	font := t.font
	if font == "" {
		font = "Helvetica, Arial, sans-serif"
	}
	anchor := ""
	if t.centered {
		anchor = " text-anchor=\"middle\""
	}
	wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\"%s fill=\"#000\">%s</text>\n", t.at.X, t.at.Y, escAttr(font), t.size, anchor, escText(t.text))
}

func pathData(pts []geom.Pt, closed bool) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&b, "M %g %g", p.X, p.Y)
		} else {
			fmt.Fprintf(&b, " L %g %g", p.X, p.Y)
		}
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = strconv.FormatFloat(d, 'g', -1, 64)
	}
	return fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, " "))
}

func svgColor(c domain.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
