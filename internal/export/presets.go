/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopatternstudio/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetDisplay PresetName = "display"
	PresetPrint   PresetName = "print"
)

// BatchOptions controls batch export across multiple formats and sheets.
//
// Path semantics:
//   - If OutDir is empty or relative, it will be created under <project>/exports/<preset>/.
//   - The PDF single-file output is named pattern.pdf in a pdf/ subfolder of OutDir.
//   - For SVG/PNG per-sheet outputs, files are sheet-<n>.(svg|png) in subfolders svg/ or png/ inside OutDir.
//     This keeps assets grouped by preset and format.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, svg, png; empty means preset defaults
	Sheets        []int    // zero-based indices; empty means all sheets
	DPIOverride   int      // when > 0 overrides raster/vector viewport DPI where applicable
	IncludeGuides *bool    // when set, overrides preset's default for guides
	OutDir        string   // base directory for outputs (created per preset if relative)
}

// BatchExport runs exports according to the given preset.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	if len(ph.Doc.Sheets) == 0 {
		return fmt.Errorf("document has no sheets")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	// normalize format strings
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	// Resolve output base directory
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, "exports", baseOut)
	}

	// Helpers to compute IncludeGuides default
	guides := presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			// Single file covering all selected sheets
			out := filepath.Join(baseOut, "pdf", "pattern.pdf")
			po := PDFOptions{IncludeGuides: guides, Sheets: opt.Sheets}
			if err := ExportPatternPDF(ph, out, po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "svg":
			outDir := filepath.Join(baseOut, "svg")
			so := SVGOptions{IncludeGuides: guides, Sheets: opt.Sheets}
			if opt.DPIOverride > 0 {
				so.DPI = opt.DPIOverride
			}
			if err := ExportSheetSVGs(ph, outDir, so); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		case "png":
			outDir := filepath.Join(baseOut, "png")
			po := PNGOptions{IncludeGuides: guides, Sheets: opt.Sheets}
			if opt.DPIOverride > 0 {
				po.DPI = opt.DPIOverride
			}
			if err := ExportSheetPNGs(ph, outDir, po); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetDisplay:
		return []string{"svg"}
	case PresetPrint:
		return []string{"pdf", "svg"}
	default:
		return []string{"pdf"}
	}
}

func presetIncludeGuides(p PresetName) bool {
	switch p {
	case PresetDisplay:
		return false
	case PresetPrint:
		return true
	default:
		return true
	}
}
