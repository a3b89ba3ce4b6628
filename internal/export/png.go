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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
	"gopatternstudio/internal/storage"
)

// PNGOptions controls PNG export behavior.
// - DPI: pixel density of the raster; sheet units scale through units-per-cm
// - IncludeGuides: draw border and margin hairlines similar to PDF
// - Sheets: if empty, export all
//
// The raster is a review preview: dash patterns collapse to solid strokes
// and labels use a fixed bitmap face instead of scalable type.
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	IncludeGuides bool
	DPI           int
	Margin        float64 // guide inset in sheet units; 0 uses 1 cm
	GuideColor    domain.Color
	CutColor      domain.Color
	SeamColor     domain.Color
	Sheets        []int
}

// ExportSheetPNGs renders each sheet of the document as a separate PNG file.
// Files are named sheet-<n>.png under outDir or the project's exports folder.
func ExportSheetPNGs(ph *storage.ProjectHandle, outDir string, opt PNGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	doc := &ph.Doc

	// Defaults
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
		seamCol = domain.Color{R: 96, G: 96, B: 96, A: 255}
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

	// Pixels per sheet unit (1 unit = 1/upc cm)
	scale := float64(dpi) / (2.54 * upc)

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

		pixW := int(math.Round(sh.Width * scale))
		pixH := int(math.Round(sh.Height * scale))
		if pixW < 1 {
			pixW = 1
		}
		if pixH < 1 {
			pixH = 1
		}

		img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
		// Background white
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

		// Guides
		if opt.IncludeGuides {
			gc := toRGBA(guideCol)
			strokePolyline(img, scalePts(rectRing(0, 0, sh.Width, sh.Height), scale), true, gc)
			strokePolyline(img, scalePts(rectRing(margin, margin, sh.Width-2*margin, sh.Height-2*margin), scale), true, gc)
		}

		for _, fig := range sortedFigures(sh) {
			for _, p := range figurePaths(fig, outline.DefaultSteps) {
				col, _, _ := strokeFor(p, upc, cutCol, seamCol, guideCol)
				strokePolyline(img, scalePts(p.pts, scale), p.closed, toRGBA(col))
			}
			for _, t := range figureTexts(fig) {
				drawBitmapText(img, t, scale)
			}
		}
		for _, t := range labelPlacements(sh, upc, outline.DefaultSteps) {
			drawBitmapText(img, t, scale)
		}

		name := filepath.Join(outDir, fmt.Sprintf("sheet-%d.png", sidx+1))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

func toRGBA(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func scalePts(pts []geom.Pt, s float64) []geom.Pt {
	out := make([]geom.Pt, len(pts))
	for i, p := range pts {
		out[i] = geom.Pt{X: p.X * s, Y: p.Y * s}
	}
	return out
}

func rectRing(x, y, w, h float64) []geom.Pt {
	return []geom.Pt{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

func strokePolyline(img *image.RGBA, pts []geom.Pt, closed bool, col color.RGBA) {
	for i := 0; i+1 < len(pts); i++ {
		strokeLine(img, pts[i], pts[i+1], col)
	}
	if closed && len(pts) > 2 {
		strokeLine(img, pts[len(pts)-1], pts[0], col)
	}
}

// strokeLine draws a 1px segment between two already-scaled points.
// SetRGBA is a no-op outside the image bounds, so clipping is free.
func strokeLine(img *image.RGBA, a, b geom.Pt, col color.RGBA) {
	x0 := int(math.Round(a.X))
	y0 := int(math.Round(a.Y))
	x1 := int(math.Round(b.X))
	y1 := int(math.Round(b.Y))
	dx := intAbs(x1 - x0)
	dy := -intAbs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawBitmapText stamps a string with the fixed 7x13 face. The face does not
// scale with DPI; raster labels are wayfinding, not typography.
func drawBitmapText(img *image.RGBA, t drawText, scale float64) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(t.at.X*scale)), int(math.Round(t.at.Y*scale))),
	}
	if t.centered {
		d.Dot.X -= d.MeasureString(t.text) / 2
	}
	d.DrawString(t.text)
}
