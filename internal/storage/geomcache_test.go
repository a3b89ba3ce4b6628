/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"gopatternstudio/internal/domain"
)

func TestGeomCachePutGetAndEvict(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Document{Name: "Cache Test"})
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Cap small enough that the third insert must evict one entry
	os.Setenv("GPS_GEOM_CACHE_MAX_BYTES", "150")
	defer os.Unsetenv("GPS_GEOM_CACHE_MAX_BYTES")

	blobA := make([]byte, 64)
	blobB := make([]byte, 64)
	blobC := make([]byte, 64)
	if err := PutGeometry(ctx, ph.Root, "fA", GeomKindOutline, "h1", blobA); err != nil {
		t.Fatalf("put A: %v", err)
	}
	if err := PutGeometry(ctx, ph.Root, "fB", GeomKindOutline, "h1", blobB); err != nil {
		t.Fatalf("put B: %v", err)
	}

	// Unknown key is a miss, not an error
	if b, err := GetGeometry(ctx, ph.Root, "nope", GeomKindOutline, "h1"); err != nil || b != nil {
		t.Fatalf("expected miss for unknown key, got %v / %v", b, err)
	}

	// Age A so the LRU choice is deterministic; last_access has second
	// granularity, too coarse to rely on here.
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE geom_cache SET last_access='2020-01-01T00:00:00Z' WHERE figure_id='fA'`); err != nil {
		t.Fatalf("age A: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	if err := PutGeometry(ctx, ph.Root, "fC", GeomKindOutline, "h1", blobC); err != nil {
		t.Fatalf("put C: %v", err)
	}

	// A was least recently used and must be gone; B and C survive
	if b, err := GetGeometry(ctx, ph.Root, "fA", GeomKindOutline, "h1"); err != nil || b != nil {
		t.Fatalf("expected A evicted, got %d bytes / %v", len(b), err)
	}
	if b, err := GetGeometry(ctx, ph.Root, "fB", GeomKindOutline, "h1"); err != nil || len(b) != 64 {
		t.Fatalf("expected B cached, got %d bytes / %v", len(b), err)
	}
	if b, err := GetGeometry(ctx, ph.Root, "fC", GeomKindOutline, "h1"); err != nil || len(b) != 64 {
		t.Fatalf("expected C cached, got %d bytes / %v", len(b), err)
	}
	total, err := TotalGeometryBytes(ctx, ph.Root)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 128 {
		t.Fatalf("expected 128 cached bytes after eviction, got %d", total)
	}
}

func TestPutGeometryRejectsUnknownKind(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Document{Name: "Kind Test"})
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx := context.Background()
	if err := PutGeometry(ctx, ph.Root, "f1", "thumbnail", "h", []byte("x")); err == nil {
		t.Fatalf("expected error for unknown geometry kind")
	}
}

func TestGetOrCreateGeometry(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Document{Name: "Cache Create"})
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	calls := 0
	gen := func(context.Context) ([]byte, error) { calls++; return []byte("abcd"), nil }
	b, err := GetOrCreateGeometry(ctx, ph.Root, "f2", GeomKindSeam, "offset=1", gen)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}
	if string(b) != "abcd" {
		t.Fatalf("unexpected data: %q", string(b))
	}
	// Second call should hit cache and not call generator
	b, err = GetOrCreateGeometry(ctx, ph.Root, "f2", GeomKindSeam, "offset=1", gen)
	if err != nil {
		t.Fatalf("getOrCreate 2: %v", err)
	}
	if string(b) != "abcd" {
		t.Fatalf("unexpected cached data: %q", string(b))
	}
	if calls != 1 {
		t.Fatalf("generator should be called once, got %d", calls)
	}
}

func TestMaxGeomCacheBytesFromEnv(t *testing.T) {
	os.Unsetenv("GPS_GEOM_CACHE_MAX_BYTES")
	if got := MaxGeomCacheBytesFromEnv(); got != 64*1024*1024 {
		t.Fatalf("default cap mismatch: %d", got)
	}
	os.Setenv("GPS_GEOM_CACHE_MAX_BYTES", "1024")
	defer os.Unsetenv("GPS_GEOM_CACHE_MAX_BYTES")
	if got := MaxGeomCacheBytesFromEnv(); got != 1024 {
		t.Fatalf("env cap mismatch: %d", got)
	}
	os.Setenv("GPS_GEOM_CACHE_MAX_BYTES", "not-a-number")
	if got := MaxGeomCacheBytesFromEnv(); got != 64*1024*1024 {
		t.Fatalf("invalid env should fall back to default: %d", got)
	}
}
