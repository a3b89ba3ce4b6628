/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopatternstudio/internal/crash"
	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/export"
	applog "gopatternstudio/internal/log"
	"gopatternstudio/internal/measure"
	"gopatternstudio/internal/storage"
	"gopatternstudio/internal/version"
)

func usage() {
	fmt.Println("Go Pattern Studio - pattern drafting workbench")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gopatternstudio version|-v|--version       Show version")
	fmt.Println("  gopatternstudio init <dir> <name>           Create a new project at <dir> with name <name>")
	fmt.Println("  gopatternstudio open <dir>                  Open project at <dir> and print summary")
	fmt.Println("  gopatternstudio save <dir>                  Save project at <dir> (creates backup)")
	fmt.Println("  gopatternstudio export <dir> [preset]       Export sheets (preset: display or print)")
	fmt.Println("  gopatternstudio search <dir> <query>        Full-text search over names and notes")
	fmt.Println("  gopatternstudio measures <file>             Check a measurement file and list its values")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Pattern Studio - pattern drafting workbench")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			doc := domain.Document{Name: name, Units: "cm", Sheets: []domain.Sheet{}}
			h, err := storage.InitProject(abs, doc)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			figures := 0
			for _, sh := range h.Doc.Sheets {
				figures += len(sh.Figures)
			}
			fmt.Printf("Opened document: %s\n", h.Doc.Name)
			fmt.Printf("Units: %s\n", docUnits(&h.Doc))
			fmt.Printf("Sheets: %d (%d figures)\n", len(h.Doc.Sheets), figures)
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			abs, _ := filepath.Abs(dir)
			l.Info("save project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			h.Doc.Metadata.Modified = time.Now().UTC().Format(time.RFC3339)
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved project and created a backup of previous manifest (if any).")
			return
		case "export":
			if len(args) < 3 {
				fmt.Println("export requires <dir>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			preset := export.PresetPrint
			if len(args) >= 4 {
				switch args[3] {
				case "display":
					preset = export.PresetDisplay
				case "print":
					preset = export.PresetPrint
				default:
					fmt.Printf("unknown preset %q (want display or print)\n", args[3])
					usage()
					os.Exit(2)
				}
			}
			abs, _ := filepath.Abs(dir)
			l.Info("export project", slog.String("root", abs), slog.String("preset", string(preset)))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if err := export.BatchExport(h, export.BatchOptions{Preset: preset}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported to", filepath.Join(abs, "exports", string(preset)))
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			query := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("search project", slog.String("root", abs), slog.String("query", query))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			ctx := context.Background()
			if _, err := storage.DetectAndRebuildIndex(ctx, h.Root, h.Doc); err != nil {
				l.Error("index rebuild failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			results, err := storage.Search(ctx, h.Root, storage.SearchQuery{Text: query, Limit: 20})
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(results) == 0 {
				fmt.Println("No matches.")
				return
			}
			for _, res := range results {
				if res.Snippet != "" {
					fmt.Printf("%-8s %s  %s\n", res.Type, res.Path, res.Snippet)
				} else {
					fmt.Printf("%-8s %s\n", res.Type, res.Path)
				}
			}
			return
		case "measures":
			if len(args) < 3 {
				fmt.Println("measures requires <file>")
				usage()
				os.Exit(2)
			}
			file := args[2]
			b, err := os.ReadFile(file)
			if err != nil {
				l.Error("read measurements failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			set, errs := measure.Parse(string(b))
			for _, name := range set.Names() {
				v, _ := set.Lookup(name)
				fmt.Printf("%-24s %8.2f cm\n", name, v)
			}
			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(os.Stderr, "%s:%d: %s\n", file, e.Line, e.Message)
				}
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func docUnits(doc *domain.Document) string {
	if doc.Units == "" {
		return "cm"
	}
	return doc.Units
}
