/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
)

func TestDetectAndRebuildIndex_OnCorruption(t *testing.T) {
	root := t.TempDir()
	// Create a small project with some content
	doc := domain.Document{
		Name:     "CorruptTest",
		Metadata: domain.Metadata{Designer: "D", Collection: "C"},
		Sheets: []domain.Sheet{{
			ID: "s1", Name: "Skirt Draft",
			Figures: []domain.Figure{
				{ID: "f1", Name: "Front Panel", Kind: domain.FigurePolygon, Closed: true, Notes: "hi there",
					Points: []geom.Pt{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 60}, {X: 0, Y: 60}}},
			},
		}},
	}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}
	// Corrupt the DB file by writing junk
	idx := IndexPath(root)
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	// Attempt detect and rebuild
	rebuilt, err := DetectAndRebuildIndex(ctx, root, doc)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	// Verify DB looks healthy and content came back from the manifest
	st, err := os.Stat(IndexPath(root))
	if err != nil || st.Size() == 0 {
		t.Fatalf("rebuilt index missing or empty: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{Text: "Panel"})
	if err != nil {
		t.Fatalf("search after rebuild: %v", err)
	}
	if len(res) == 0 {
		t.Fatalf("expected rebuilt index to serve search results")
	}
	// Backup file should exist
	bdir := filepath.Join(root, IndexDirName, "backups")
	entries, _ := os.ReadDir(bdir)
	if len(entries) == 0 {
		t.Fatalf("expected backup file in %s", bdir)
	}
}
