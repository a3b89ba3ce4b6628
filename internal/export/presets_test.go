/*
 * Copyright (c) 2025
 */
package export

import (
	"os"
	"path/filepath"
	"testing"

	"gopatternstudio/internal/storage"
)

func TestBatchExport_DisplayPreset(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleDocument(t))
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := BatchExport(ph, BatchOptions{Preset: PresetDisplay}); err != nil {
		t.Fatalf("batch export display: %v", err)
	}
	p := filepath.Join(root, "exports", "display", "svg", "sheet-1.svg")
	st, err := os.Stat(p)
	if err != nil {
		t.Fatalf("missing %s: %v", p, err)
	}
	if st.Size() <= 0 {
		t.Fatalf("empty file: %s", p)
	}
}

func TestBatchExport_PrintPreset(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleDocument(t))
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	if err := BatchExport(ph, BatchOptions{Preset: PresetPrint}); err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	checks := []string{
		filepath.Join(root, "exports", "print", "pdf", "pattern.pdf"),
		filepath.Join(root, "exports", "print", "svg", "sheet-1.svg"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_ExplicitPNGFormat(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleDocument(t))
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	opts := BatchOptions{Preset: PresetDisplay, Formats: []string{"png"}, DPIOverride: 72}
	if err := BatchExport(ph, opts); err != nil {
		t.Fatalf("batch export png: %v", err)
	}
	p := filepath.Join(root, "exports", "display", "png", "sheet-1.png")
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("missing %s: %v", p, err)
	}
	if err := BatchExport(ph, BatchOptions{Formats: []string{"docx"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
