/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textmetrics

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

type fontKey struct {
	family string
	weight int
	italic bool
}

// FontLibrary holds parsed OpenType fonts keyed by family, weight and
// italic flag. Safe for concurrent use.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)}
}

// LoadTTF parses the font file at path and registers it under the given
// family, weight and italic flag.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.LoadTTFData(family, weight, italic, data)
}

// LoadTTFData registers a font from raw TTF/OTF bytes.
func (fl *FontLibrary) LoadTTFData(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	if weight == 0 {
		weight = 400
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[fontKey{family: normalizeFamily(family), weight: weight, italic: italic}] = f
	return nil
}

// Families lists the registered family names, deduplicated.
func (fl *FontLibrary) Families() []string {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	return out
}

// find returns the best registered match for the spec: exact key first,
// then any face of the same family, then nil.
func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	family := normalizeFamily(spec.Family)
	weight := spec.Weight
	if weight == 0 {
		weight = 400
	}
	if f, ok := fl.fonts[fontKey{family: family, weight: weight, italic: spec.Italic}]; ok {
		return f
	}
	for k, f := range fl.fonts {
		if k.family == family {
			return f
		}
	}
	return nil
}

func normalizeFamily(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OTProvider resolves faces from a FontLibrary and delegates to Fallback
// when the library has no match. The zero DPI means 72, which keeps point
// sizes and drawing units interchangeable.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if p.Lib != nil {
		if f := p.Lib.find(spec); f != nil {
			size := spec.SizePt
			if size <= 0 {
				size = 12
			}
			dpi := p.DPI
			if dpi <= 0 {
				dpi = 72
			}
			face, err := opentype.NewFace(f, &opentype.FaceOptions{
				Size:    size,
				DPI:     dpi,
				Hinting: font.HintingFull,
			})
			if err == nil {
				m := face.Metrics()
				return face, Metrics{
					Ascent:  float64(m.Ascent) / 64,
					Descent: float64(m.Descent) / 64,
					LineGap: float64(m.Height-m.Ascent-m.Descent) / 64,
				}
			}
		}
	}
	if p.Fallback != nil {
		return p.Fallback.Resolve(spec)
	}
	return BasicProvider{}.Resolve(spec)
}
