package domain

import (
	"encoding/json"
	"testing"

	"gopatternstudio/internal/geom"
)

func TestDocumentJSONRoundTrip(t *testing.T) {
	d := Document{
		Name:  "RoundTrip",
		Units: "cm",
		Sheets: []Sheet{
			{
				ID:     "sheet-1",
				Width:  84,
				Height: 119,
				Figures: []Figure{
					{
						ID:   "front",
						Kind: FigureRect,
						X:    10, Y: 10,
						Width:  40,
						Height: 60,
						Darts: []Dart{
							{ID: "d1", Mode: DartFollow, T: 0.25, WidthLeft: 1, WidthRight: 1, Depth: 3, Symmetric: true},
						},
					},
				},
			},
		},
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != d.Name {
		t.Fatalf("name mismatch: got %q want %q", got.Name, d.Name)
	}
	if len(got.Sheets) != 1 || len(got.Sheets[0].Figures) != 1 {
		t.Fatalf("unexpected sheets/figures structure: %+v", got)
	}
	fig := got.Sheets[0].Figures[0]
	if len(fig.Darts) != 1 || fig.Darts[0].Mode != DartFollow || fig.Darts[0].Depth != 3 {
		t.Fatalf("dart lost: %+v", fig.Darts)
	}
}

func TestSeamFigureRoundTrip(t *testing.T) {
	f := Figure{
		ID:   "front-seam",
		Kind: FigureSeam,
		Seam: &SeamInfo{
			ParentID:  "front",
			Offset:    1.5,
			PerEdge:   map[string]float64{"e1": 2, "e2": 0},
			Signature: "a1b2c3",
		},
		Points: []geom.Pt{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Figure
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Seam == nil || got.Seam.ParentID != "front" || got.Seam.PerEdge["e1"] != 2 {
		t.Fatalf("seam info lost: %+v", got.Seam)
	}
}

func TestFigureCloneIsDeep(t *testing.T) {
	h := geom.P(1, 0)
	f := Figure{
		ID:     "c",
		Kind:   FigureCurve,
		Nodes:  []Node{{ID: "n1", At: geom.P(0, 0), HandleOut: &h}, {ID: "n2", At: geom.P(10, 0)}},
		Edges:  []Edge{{ID: "e1", From: "n1", To: "n2", Kind: EdgeCubic}},
		Points: []geom.Pt{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Style:  &CurveStyle{Mode: CurveStyled, PresetID: "hip-curve"},
	}
	c := f.Clone()
	c.Nodes[0].HandleOut.X = 99
	c.Points[0].X = 99
	c.Style.PresetID = "other"
	if f.Nodes[0].HandleOut.X != 1 {
		t.Fatalf("clone shares node handles")
	}
	if f.Points[0].X != 0 {
		t.Fatalf("clone shares point slice")
	}
	if f.Style.PresetID != "hip-curve" {
		t.Fatalf("clone shares style")
	}
}
