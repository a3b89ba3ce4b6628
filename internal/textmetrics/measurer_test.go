/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textmetrics

import (
	"math"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/outline"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// Face7x13 advances 7 per glyph with an 11+2 ascent/descent split, which
// makes every expectation below exact.

func TestEstimateBoxBasicFace(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "HELLO", Size: 10})
	if !almostEq(sz.W, 35) || !almostEq(sz.H, 13) {
		t.Fatalf("box = %+v, want 35x13", sz)
	}
}

func TestLineHeightOverride(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "HELLO", Size: 10, LineHeight: 1.5})
	if !almostEq(sz.H, 15) {
		t.Fatalf("height = %v, want 15", sz.H)
	}
}

func TestHardLineBreaks(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "AB\nC", Size: 10})
	if !almostEq(sz.W, 14) || !almostEq(sz.H, 26) {
		t.Fatalf("box = %+v, want 14x26", sz)
	}
}

func TestWordWrap(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "AAA BBB CCC", Size: 10, WrapWidth: 30})
	if !almostEq(sz.W, 21) || !almostEq(sz.H, 39) {
		t.Fatalf("box = %+v, want 21x39 (three lines)", sz)
	}
}

func TestWordWrapNeverSplitsWords(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "AAAAAA B", Size: 10, WrapWidth: 30})
	if !almostEq(sz.W, 42) || !almostEq(sz.H, 26) {
		t.Fatalf("box = %+v, want 42x26 (long word kept whole)", sz)
	}
}

func TestLetterSpacing(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "HELLO", Size: 10, LetterSpacing: 2})
	if !almostEq(sz.W, 45) {
		t.Fatalf("width = %v, want 45", sz.W)
	}
}

func TestPaddingAppliedOnBothSides(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "HELLO", Size: 10, Padding: 3})
	if !almostEq(sz.W, 41) || !almostEq(sz.H, 19) {
		t.Fatalf("box = %+v, want 41x19", sz)
	}
}

func TestEmptyContentStillOneLine(t *testing.T) {
	m := NewMeasurer(BasicProvider{})
	sz := m.EstimateBox(domain.TextSpec{Content: "", Size: 10, Padding: 2})
	if !almostEq(sz.W, 4) || !almostEq(sz.H, 17) {
		t.Fatalf("box = %+v, want 4x17", sz)
	}
}

func TestNilProviderUsesHeuristic(t *testing.T) {
	spec := domain.TextSpec{Content: "bodice front", Size: 8, Padding: 1}
	got := (&Measurer{}).EstimateBox(spec)
	want := outline.EstimateTextBox(spec)
	if !almostEq(got.W, want.W) || !almostEq(got.H, want.H) {
		t.Fatalf("box = %+v, want heuristic %+v", got, want)
	}
}

func TestOTProviderFallsBackToBasic(t *testing.T) {
	spec := domain.TextSpec{Content: "HELLO", Size: 10}
	empty := NewMeasurer(OTProvider{Lib: NewFontLibrary()})
	basic := NewMeasurer(BasicProvider{})
	got, want := empty.EstimateBox(spec), basic.EstimateBox(spec)
	if !almostEq(got.W, want.W) || !almostEq(got.H, want.H) {
		t.Fatalf("box = %+v, want basic fallback %+v", got, want)
	}
}

func TestFontLibraryRejectsGarbage(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.LoadTTFData("bogus", 400, false, []byte("not a font")); err == nil {
		t.Fatal("expected parse error for garbage font data")
	}
	if n := len(lib.Families()); n != 0 {
		t.Fatalf("families = %d, want 0", n)
	}
}

func TestOpenTypeResolveAndFamilyFallback(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.LoadTTFData("Go Regular", 400, false, goregular.TTF); err != nil {
		t.Fatalf("load go regular: %v", err)
	}

	face, met := OTProvider{Lib: lib}.Resolve(FontSpec{Family: "go regular", SizePt: 12})
	if face == nil {
		t.Fatal("expected a resolved face")
	}
	if met.Ascent <= 0 || met.Descent < 0 {
		t.Fatalf("implausible metrics %+v", met)
	}

	// An unmatched weight still finds the family.
	bold, _ := OTProvider{Lib: lib}.Resolve(FontSpec{Family: "GO REGULAR", SizePt: 12, Weight: 700})
	if bold == nil {
		t.Fatal("family fallback did not resolve")
	}

	m := NewMeasurer(OTProvider{Lib: lib})
	narrow := m.EstimateBox(domain.TextSpec{Content: "il", Font: "Go Regular", Size: 12})
	wide := m.EstimateBox(domain.TextSpec{Content: "WWWW", Font: "Go Regular", Size: 12})
	if narrow.W <= 0 || wide.W <= narrow.W {
		t.Fatalf("proportional widths wrong: narrow %v, wide %v", narrow.W, wide.W)
	}
	big := m.EstimateBox(domain.TextSpec{Content: "WWWW", Font: "Go Regular", Size: 24})
	if big.W <= wide.W || big.H <= wide.H {
		t.Fatalf("size scaling wrong: 12pt %+v, 24pt %+v", wide, big)
	}
}
