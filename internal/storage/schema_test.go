/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

func TestManifestConformsToSchema(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, schemaTestDocument())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}

	// Load manifest bytes
	data, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}

	// Load schema bytes via relative path to repository docs
	schemaPath := filepath.Join("..", "..", "docs", "pattern.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("manifest does not conform to schema")
	}
}

// schemaTestDocument touches every figure kind and optional block so schema
// drift shows up here first.
func schemaTestDocument() domain.Document {
	h := geom.Pt{X: 4, Y: 0}
	return domain.Document{
		Name:       "Schema Test",
		Units:      "cm",
		UnitsPerCm: 1,
		Metadata:   domain.Metadata{Designer: "A. Tailor", Collection: "SS26", SizeLabel: "38", Notes: "fixture"},
		Sheets: []domain.Sheet{{
			ID: "s1", Name: "Block", Width: 120, Height: 80,
			Figures: []domain.Figure{
				{
					ID: "f1", Name: "Front", Kind: domain.FigurePolygon, Closed: true,
					Points: []geom.Pt{{X: 0, Y: 0}, {X: 24, Y: 0}, {X: 24, Y: 40}, {X: 0, Y: 40}},
					Darts: []domain.Dart{{
						ID: "d1", Label: "waist dart", Mode: domain.DartFollow,
						T: 0.25, WidthLeft: 1.2, WidthRight: 1.2, Depth: 9, Symmetric: true,
					}},
					Grain: &domain.GrainLine{From: geom.Pt{X: 12, Y: 5}, To: geom.Pt{X: 12, Y: 35}, Kind: "straight"},
				},
				{
					ID: "f2", Kind: domain.FigureCurve,
					Nodes: []domain.Node{
						{ID: "n1", At: geom.Pt{X: 0, Y: 0}, HandleOut: &h, Kind: domain.NodeSmooth},
						{ID: "n2", At: geom.Pt{X: 12, Y: 8}, Kind: domain.NodeCorner},
					},
					Edges: []domain.Edge{{
						ID: "e1", From: "n1", To: "n2", Kind: domain.EdgeCubic,
						Style: &domain.EdgeStyle{Line: "guide", Width: 0.2, Color: domain.Color{R: 128, G: 128, B: 128, A: 255}},
					}},
					Style: &domain.CurveStyle{
						Mode: domain.CurveStyled, PresetID: "hip-curve",
						Params: domain.CurveParams{Height: 1.1, Bias: 0.1},
					},
				},
				{ID: "f3", Kind: domain.FigureRect, Width: 10, Height: 6},
				{ID: "f4", Kind: domain.FigureCircle, Radius: 3},
				{
					ID: "f5", Kind: domain.FigureText, X: 2, Y: 2,
					Text: &domain.TextSpec{Content: "Cut 2", Size: 4, LineHeight: 1.4, Padding: 1},
				},
				{
					ID: "f1-seam", Kind: domain.FigureSeam, Closed: true,
					Points: []geom.Pt{{X: -1, Y: -1}, {X: 25, Y: -1}, {X: 25, Y: 41}, {X: -1, Y: 41}},
					Seam: &domain.SeamInfo{
						ParentID: "f1", Offset: 1,
						PerEdge:   map[string]float64{"e1": 1.5},
						Signature: "abcdef0123456789",
					},
				},
			},
		}},
		Assets: []domain.Asset{{Type: "font", Path: "assets/label.ttf", License: "OFL-1.1"}},
	}
}
