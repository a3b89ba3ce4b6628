/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package stylepack packages curve preset files for exchange between
// projects. A pack is a plain zip holding the project's styles/*.yaml preset
// files plus a small manifest; the conventional file extension is .gpscurves.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopatternstudio/internal/curvestyle"
	applog "gopatternstudio/internal/log"
)

const manifestName = "stylepack.manifest.txt"

// Size caps keep a hostile pack from filling the disk. Preset files are
// hand-written YAML, a few KiB at most.
const (
	maxFileBytes = 1 << 20  // per preset file, uncompressed
	maxPackBytes = 16 << 20 // whole pack, uncompressed
)

// ExportPack zips the project's curve preset files (<project>/styles/*.yaml)
// into a single archive. The archive preserves the styles/ prefix and adds a
// manifest file at the root for quick human inspection. A missing or empty
// styles directory still yields an archive with only the manifest.
func ExportPack(projectRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	stylesDir := filepath.Join(projectRoot, "styles")
	if _, err := os.Stat(stylesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(stylesDir, 0o755); err != nil {
			return fmt.Errorf("ensure styles dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("Go Pattern Studio Curve Preset Pack\nCreated: %s\nProject: %s\n\nContents mirror the project's /styles directory.\n",
		time.Now().Format(time.RFC3339), projectRoot)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(stylesDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !isPresetFile(p) {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, p)
		if err != nil {
			return err
		}
		// Forward slashes inside the zip regardless of host OS.
		fw, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("curve pack exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallPack extracts a pack into the project's styles directory. Entries
// are sanitized against path escape, must be parseable curve preset YAML,
// and are renamed with a numeric suffix when the target name is taken, so an
// install never overwrites existing presets. Returns the count of files
// installed; skipped entries are logged and not counted.
func InstallPack(projectRoot string, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	stylesDir := filepath.Join(projectRoot, "styles")
	if err := os.MkdirAll(stylesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	var total int64
	for _, f := range r.File {
		name := path.Clean(f.Name)
		if name == manifestName {
			continue
		}
		if name == "." || strings.HasPrefix(name, "/") || name == ".." || strings.HasPrefix(name, "../") {
			l.Warn("skip unsafe entry", slog.String("name", f.Name))
			continue
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if !isPresetFile(name) {
			l.Warn("skip non-preset entry", slog.String("name", f.Name))
			continue
		}
		if f.UncompressedSize64 > maxFileBytes {
			l.Warn("skip oversized entry", slog.String("name", f.Name), slog.Uint64("size", f.UncompressedSize64))
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return installed, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxFileBytes+1))
		_ = rc.Close()
		if err != nil {
			return installed, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		// The header can lie about the uncompressed size.
		if len(data) > maxFileBytes {
			l.Warn("skip oversized entry", slog.String("name", f.Name))
			continue
		}
		total += int64(len(data))
		if total > maxPackBytes {
			return installed, fmt.Errorf("pack exceeds %d bytes uncompressed", int64(maxPackBytes))
		}
		if _, _, err := curvestyle.ParsePack(data); err != nil {
			l.Warn("skip invalid preset file", slog.String("name", f.Name), slog.Any("err", err))
			continue
		}

		// Place everything under styles/, keeping any sub-folder structure.
		targetRel := name
		if !strings.HasPrefix(targetRel, "styles/") {
			targetRel = path.Join("styles", targetRel)
		}
		targetPath := filepath.Join(projectRoot, filepath.FromSlash(targetRel))
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		targetPath, err = collisionPath(targetPath)
		if err != nil {
			return installed, err
		}
		if err := os.WriteFile(targetPath, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("curve pack installed", slog.Int("files", installed))
	return installed, nil
}

// collisionPath returns p unchanged when free, otherwise the first
// "<stem>-N<ext>" that does not exist yet.
func collisionPath(p string) (string, error) {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p, nil
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	for i := 2; i < 1000; i++ {
		cand := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, nil
		}
	}
	return "", fmt.Errorf("no free name for %s", p)
}

func isPresetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
