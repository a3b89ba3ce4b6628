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
)

func TestFigureSnapshotsCRUD(t *testing.T) {
	root := t.TempDir()
	ph := &ProjectHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName)}
	ctx := context.Background()
	// Ensure DB exists
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db.Close error: %v", err)
	}
	base := time.Now()
	if err := SaveFigureSnapshot(ctx, ph, "f1", []byte("hello"), base); err != nil {
		t.Fatalf("SaveFigureSnapshot: %v", err)
	}
	blob, _, err := LatestFigureSnapshot(ctx, ph, "f1")
	if err != nil || string(blob) != "hello" {
		t.Fatalf("LatestFigureSnapshot got %q err %v", string(blob), err)
	}
	// Add more snapshots with strictly increasing timestamps
	for i := 0; i < 5; i++ {
		b := []byte{byte('a' + i)}
		if err := SaveFigureSnapshot(ctx, ph, "f1", b, base.Add(time.Duration(i+1)*time.Millisecond)); err != nil {
			t.Fatalf("SaveFigureSnapshot %d: %v", i, err)
		}
	}
	blob, ts, err := LatestFigureSnapshot(ctx, ph, "f1")
	if err != nil || string(blob) != "e" {
		t.Fatalf("latest after additions got %q err %v", string(blob), err)
	}
	if ts.IsZero() {
		t.Fatalf("expected parseable timestamp on latest snapshot")
	}
	list, err := ListFigureSnapshots(ctx, ph, "f1", 10)
	if err != nil || len(list) != 6 {
		t.Fatalf("ListFigureSnapshots got %d err %v", len(list), err)
	}
	// Prune keep last 3
	n, err := PruneFigureSnapshots(ctx, ph, "f1", 3)
	if err != nil {
		t.Fatalf("PruneFigureSnapshots: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	list, err = ListFigureSnapshots(ctx, ph, "f1", 10)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListFigureSnapshots after prune got %d err %v", len(list), err)
	}
	// Newest first
	if string(list[0].Blob) != "e" {
		t.Fatalf("expected newest blob first, got %q", string(list[0].Blob))
	}
	// Clean up DB file
	_ = os.Remove(IndexPath(root))
}

func TestSaveFigureSnapshotRequiresFigureID(t *testing.T) {
	root := t.TempDir()
	ph := &ProjectHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName)}
	if err := SaveFigureSnapshot(context.Background(), ph, "", []byte("x"), time.Now()); err == nil {
		t.Fatalf("expected error for empty figure id")
	}
}
