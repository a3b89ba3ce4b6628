/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model structures for the Go Pattern Studio project.
// The intent is to keep the manifest lightweight and human-readable JSON while the
// geometry engines derive everything else (outlines, seam allowances, dart shapes).
//
// Figures hold two indexed collections (nodes, edges) with id-based cross
// references, never live pointers. Engine operations return new Figure values
// and leave their inputs untouched, which keeps snapshotting for the editor's
// undo history cheap.

import "gopatternstudio/internal/geom"

// Figure kinds.
const (
	FigureLine    = "line"
	FigureRect    = "rect"
	FigureCircle  = "circle"
	FigureCurve   = "curve" // two nodes joined by one cubic edge
	FigurePolygon = "polygon"
	FigureText    = "text"
	FigureSeam    = "seam" // derived allowance contour, see SeamInfo
)

// Node continuity modes.
const (
	NodeCorner = "corner"
	NodeSmooth = "smooth"
	NodeDart   = "dart" // auxiliary dart vertex; participates in bounds
)

// Edge segment kinds.
const (
	EdgeLine  = "line"
	EdgeCubic = "cubic" // uses the from-node's out handle and the to-node's in handle
)

// Curve style link modes.
const (
	CurveCustom = "custom" // control handles edited by hand, no preset link
	CurveStyled = "styled" // handles synthesized from a named preset
)

// Dart anchor link modes.
const (
	DartFollow = "follow" // anchor tracks an arclength fraction of the base contour
	DartFrozen = "frozen" // anchor is a fixed local point projected onto the contour
)

// Grain line kinds.
const (
	GrainStraight = "straight"
	GrainBias     = "bias"
	GrainFold     = "fold" // piece is cut on a folded edge
)

// CurrentSchemaVersion is written to new manifests. Loaders accept anything
// at or below it.
const CurrentSchemaVersion = 1

// Document represents a pattern document and its metadata.
// It is intended to serialize to a human-readable JSON manifest.
type Document struct {
	SchemaVersion int      `json:"schemaVersion"`
	Name          string   `json:"name"`
	Units         string   `json:"units,omitempty"`      // cm, mm or in
	UnitsPerCm    float64  `json:"unitsPerCm,omitempty"` // drawing units per centimeter, 0 means 1
	Metadata      Metadata `json:"metadata,omitempty"`
	Sheets        []Sheet  `json:"sheets"`
	Assets        []Asset  `json:"assets,omitempty"`
}

// Metadata contains optional descriptive metadata for a document.
type Metadata struct {
	Designer   string `json:"designer,omitempty"`
	Collection string `json:"collection,omitempty"`
	SizeLabel  string `json:"sizeLabel,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Created    string `json:"created,omitempty"`  // RFC 3339
	Modified   string `json:"modified,omitempty"` // RFC 3339
}

// Sheet is a drafting surface holding placed figures.
type Sheet struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Figures []Figure `json:"figures"`
}

// Figure is a pattern piece or annotation placed on a sheet. Position and
// rotation define the local-to-world transform; all point data is local.
type Figure struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Kind        string      `json:"kind"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	RotationDeg float64     `json:"rotationDeg,omitempty"`
	Closed      bool        `json:"closed,omitempty"`
	Width       float64     `json:"width,omitempty"`  // rect kind
	Height      float64     `json:"height,omitempty"` // rect kind
	Radius      float64     `json:"radius,omitempty"` // circle kind
	Points      []geom.Pt   `json:"points,omitempty"` // explicit outline (polygon kind)
	Base        []geom.Pt   `json:"base,omitempty"`   // contour snapshot taken before the first dart
	Nodes       []Node      `json:"nodes,omitempty"`
	Edges       []Edge      `json:"edges,omitempty"`
	Darts       []Dart      `json:"darts,omitempty"`
	Style       *CurveStyle `json:"style,omitempty"` // curve kind only
	Seam        *SeamInfo   `json:"seam,omitempty"`  // seam kind only
	Grain       *GrainLine  `json:"grain,omitempty"`
	Text        *TextSpec   `json:"text,omitempty"` // text kind only
	ZOrder      int         `json:"zOrder,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// Node is a contour vertex. Handles are offsets relative to At and feed cubic
// edges on either side.
type Node struct {
	ID        string   `json:"id"`
	At        geom.Pt  `json:"at"`
	HandleIn  *geom.Pt `json:"handleIn,omitempty"`
	HandleOut *geom.Pt `json:"handleOut,omitempty"`
	Kind      string   `json:"kind,omitempty"` // corner, smooth, dart
}

// Edge joins two nodes by id. Cubic edges take their control points from the
// adjacent node handles. Allowance overrides the uniform seam distance for
// this edge when generating per-edge allowances.
type Edge struct {
	ID        string     `json:"id"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Kind      string     `json:"kind"` // line or cubic
	Allowance float64    `json:"allowance,omitempty"`
	Style     *EdgeStyle `json:"style,omitempty"`
}

// CurveStyle records whether a curve figure is a live instance of a named
// preset or has been manually edited. A nil CurveStyle means custom.
type CurveStyle struct {
	Mode        string      `json:"mode"` // custom or styled
	PresetID    string      `json:"presetId,omitempty"`
	TechnicalID string      `json:"technicalId,omitempty"`
	Params      CurveParams `json:"params,omitempty"`
}

// CurveParams adjust a styled curve relative to its preset template.
type CurveParams struct {
	Height    float64 `json:"height,omitempty"` // scales curve depth relative to the chord
	Bias      float64 `json:"bias,omitempty"`   // shifts the apex along the chord, clamped to +-0.2
	FlipX     bool    `json:"flipX,omitempty"`
	FlipY     bool    `json:"flipY,omitempty"`
	RotateDeg float64 `json:"rotateDeg,omitempty"`
}

// Dart is a triangular wedge folded into a figure contour. Half-opening
// widths run along the containing segment from the anchor; Depth is the
// distance from the contour to the apex. The three node ids identify the
// wedge vertices after insertion so stale references can be detected.
type Dart struct {
	ID         string   `json:"id"`
	Label      string   `json:"label,omitempty"`
	Mode       string   `json:"mode"`             // follow or frozen
	T          float64  `json:"t,omitempty"`      // arclength fraction (follow mode)
	Anchor     *geom.Pt `json:"anchor,omitempty"` // fixed local point (frozen mode)
	WidthLeft  float64  `json:"widthLeft"`
	WidthRight float64  `json:"widthRight"`
	Depth      float64  `json:"depth"`
	Symmetric  bool     `json:"symmetric,omitempty"`
	LeftID     string   `json:"leftId,omitempty"`
	ApexID     string   `json:"apexId,omitempty"`
	RightID    string   `json:"rightId,omitempty"`
}

// SeamInfo marks a figure as the derived seam allowance of another figure.
// Offset is the uniform distance; PerEdge overrides it per parent edge id.
// Signature identifies the parent outline the contour was generated from so
// staleness is detectable without recomputing.
type SeamInfo struct {
	ParentID  string             `json:"parentId"`
	Offset    float64            `json:"offset"`
	PerEdge   map[string]float64 `json:"perEdge,omitempty"`
	Signature string             `json:"signature,omitempty"`
}

// GrainLine marks fabric orientation on a piece, in local coordinates.
type GrainLine struct {
	From geom.Pt `json:"from"`
	To   geom.Pt `json:"to"`
	Kind string  `json:"kind,omitempty"` // straight, bias, fold
}

// TextSpec holds the content and typography of a text figure. The fields
// mirror what the bounding box estimation needs; no text is ever rendered by
// the engine.
type TextSpec struct {
	Content       string  `json:"content"`
	Font          string  `json:"font,omitempty"`
	Size          float64 `json:"size"`
	LineHeight    float64 `json:"lineHeight,omitempty"`    // multiple of size, defaults to 1.2
	LetterSpacing float64 `json:"letterSpacing,omitempty"` // extra advance per character
	Padding       float64 `json:"padding,omitempty"`
	WrapWidth     float64 `json:"wrapWidth,omitempty"` // 0 means no wrapping
}

// EdgeStyle defines how an edge renders on export.
type EdgeStyle struct {
	Line  string  `json:"line,omitempty"` // cut, fold, seam, guide
	Width float64 `json:"width,omitempty"`
	Color Color   `json:"color,omitempty"`
}

// Asset describes external resources like fonts referenced by text figures.
type Asset struct {
	Type    string `json:"type"` // font, image, ref
	Path    string `json:"path"`
	License string `json:"license,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
