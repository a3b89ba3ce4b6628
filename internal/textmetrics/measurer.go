/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textmetrics measures pattern label text with real font faces.
// It plugs into the outline package's TextMeasurer seam; without a resolved
// face it degrades to the same average-character-width heuristic the engine
// uses on its own.
package textmetrics

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	"gopatternstudio/internal/outline"
)

// FontSpec describes a requested label font.
type FontSpec struct {
	Family string
	SizePt float64
	Weight int // 100..900
	Italic bool
}

// Metrics are the resolved face's vertical metrics in drawing units.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider serves x/image's fixed 7x13 face; deterministic, always
// available, used as the terminal fallback.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Measurer implements outline.TextMeasurer on top of a Provider. A nil
// provider answers with the engine's heuristic box.
type Measurer struct {
	Provider Provider
}

func NewMeasurer(p Provider) *Measurer { return &Measurer{Provider: p} }

// EstimateBox lays the label's content out with measured advances: hard
// breaks on newlines, word wrap at WrapWidth, letter spacing added per
// rune. An explicit LineHeight multiplier overrides the face's natural line
// height.
func (m *Measurer) EstimateBox(spec domain.TextSpec) geom.Size {
	if m == nil || m.Provider == nil {
		return outline.EstimateTextBox(spec)
	}
	face, met := m.Provider.Resolve(FontSpec{Family: spec.Font, SizePt: spec.Size})
	if face == nil {
		return outline.EstimateTextBox(spec)
	}
	drawer := &font.Drawer{Face: face}

	lineH := met.Ascent + met.Descent + met.LineGap
	if spec.LineHeight > 0 && spec.Size > 0 {
		lineH = spec.Size * spec.LineHeight
	}

	var widest float64
	lines := 0
	for _, para := range strings.Split(spec.Content, "\n") {
		for _, w := range wrapWidths(drawer, para, spec.LetterSpacing, spec.WrapWidth) {
			widest = max(widest, w)
			lines++
		}
	}
	return geom.Size{
		W: widest + 2*spec.Padding,
		H: float64(lines)*lineH + 2*spec.Padding,
	}
}

// wrapWidths word-wraps one paragraph and returns the width of each
// resulting line. A single word longer than the wrap width stays on its own
// line rather than being broken mid-word.
func wrapWidths(d *font.Drawer, para string, letterSpacing, wrapWidth float64) []float64 {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []float64{0}
	}
	spaceW := advance(d, " ", letterSpacing)
	var out []float64
	cur := advance(d, words[0], letterSpacing)
	for _, w := range words[1:] {
		ww := advance(d, w, letterSpacing)
		if wrapWidth > 0 && cur+spaceW+ww > wrapWidth {
			out = append(out, cur)
			cur = ww
			continue
		}
		cur += spaceW + ww
	}
	return append(out, cur)
}

func advance(d *font.Drawer, s string, letterSpacing float64) float64 {
	w := float64(d.MeasureString(s)) / 64
	if letterSpacing != 0 {
		w += letterSpacing * float64(len([]rune(s)))
	}
	return w
}
