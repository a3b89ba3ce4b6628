/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package curvestyle

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

// packFile is the on-disk YAML layout of a curve preset pack.
type packFile struct {
	Name    string       `yaml:"name"`
	Presets []packPreset `yaml:"presets"`
}

type packPreset struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Technical string     `yaml:"technical"`
	C1        [2]float64 `yaml:"c1"`
	C2        [2]float64 `yaml:"c2"`
	Height    float64    `yaml:"height"`
	Bias      float64    `yaml:"bias"`
	FlipX     bool       `yaml:"flipX"`
	FlipY     bool       `yaml:"flipY"`
	RotateDeg float64    `yaml:"rotateDeg"`
}

// FormatPack encodes presets as a pack file, the inverse of ParsePack. Used
// when exporting user-defined presets into a styles/*.yaml file.
func FormatPack(name string, presets []Preset) ([]byte, error) {
	pf := packFile{Name: name, Presets: make([]packPreset, 0, len(presets))}
	for _, p := range presets {
		if p.ID == "" {
			return nil, fmt.Errorf("curve pack %q: preset %q has no id", name, p.Name)
		}
		pf.Presets = append(pf.Presets, packPreset{
			ID:        p.ID,
			Name:      p.Name,
			Technical: p.Technical,
			C1:        [2]float64{p.C1.X, p.C1.Y},
			C2:        [2]float64{p.C2.X, p.C2.Y},
			Height:    p.Defaults.Height,
			Bias:      p.Defaults.Bias,
			FlipX:     p.Defaults.FlipX,
			FlipY:     p.Defaults.FlipY,
			RotateDeg: p.Defaults.RotateDeg,
		})
	}
	out, err := yaml.Marshal(pf)
	if err != nil {
		return nil, fmt.Errorf("format curve pack: %w", err)
	}
	return out, nil
}

// ParsePack decodes a preset pack. Presets with no id are rejected; a zero
// height defaults to 1 so hand-written packs can omit it.
func ParsePack(data []byte) (string, []Preset, error) {
	var pf packFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return "", nil, fmt.Errorf("parse curve pack: %w", err)
	}
	presets := make([]Preset, 0, len(pf.Presets))
	for i, pp := range pf.Presets {
		if pp.ID == "" {
			return "", nil, fmt.Errorf("curve pack %q: preset %d has no id", pf.Name, i)
		}
		name := pp.Name
		if name == "" {
			name = pp.ID
		}
		height := pp.Height
		if height == 0 {
			height = 1
		}
		presets = append(presets, Preset{
			ID:        pp.ID,
			Name:      name,
			Technical: pp.Technical,
			C1:        geom.P(pp.C1[0], pp.C1[1]),
			C2:        geom.P(pp.C2[0], pp.C2[1]),
			Defaults: domain.CurveParams{
				Height: height, Bias: pp.Bias,
				FlipX: pp.FlipX, FlipY: pp.FlipY, RotateDeg: pp.RotateDeg,
			},
		})
	}
	return pf.Name, presets, nil
}
