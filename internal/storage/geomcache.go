/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// GeomKind is a type discriminator for geom_cache rows.
// - outline: sampled outline polyline blob for a figure
// - seam: generated seam allowance contour blob
const (
	GeomKindOutline = "outline"
	GeomKindSeam    = "seam"
)

// EnsureGeomCacheMigrated guarantees the geom_cache table exists with the
// columns needed for LRU tracking. It is safe to call multiple times; older
// index files gain the missing columns in place.
func EnsureGeomCacheMigrated(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS geom_cache (
		id           INTEGER PRIMARY KEY,
		figure_id    TEXT NOT NULL,
		kind         TEXT NOT NULL,
		params_hash  TEXT NOT NULL,
		geom_blob    BLOB,
		size         INTEGER NOT NULL DEFAULT 0,
		updated_at   TEXT NOT NULL,
		last_access  TEXT
	);`); err != nil {
		return fmt.Errorf("ensure geom_cache table: %w", err)
	}
	// Inspect current columns; early index files may predate LRU tracking.
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(geom_cache);`)
	if err != nil {
		return fmt.Errorf("table_info geom_cache: %w", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if rows.Err() != nil {
		return rows.Err()
	}
	if !cols["size"] {
		if _, err := db.ExecContext(ctx, `ALTER TABLE geom_cache ADD COLUMN size INTEGER DEFAULT 0`); err != nil {
			return fmt.Errorf("add size: %w", err)
		}
	}
	if !cols["last_access"] {
		if _, err := db.ExecContext(ctx, `ALTER TABLE geom_cache ADD COLUMN last_access TEXT`); err != nil {
			return fmt.Errorf("add last_access: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS ux_geom_cache_key ON geom_cache(figure_id, kind, params_hash)`); err != nil {
		return fmt.Errorf("create key index: %w", err)
	}
	// Helpful index for LRU eviction by access time
	_, _ = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_geom_cache_access ON geom_cache(last_access)`)
	return nil
}

// GetGeometry returns the cached blob for the given key and updates last_access.
// A nil result with nil error means a cache miss.
func GetGeometry(ctx context.Context, projectRoot string, figureID, kind, paramsHash string) ([]byte, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT geom_blob FROM geom_cache WHERE figure_id=? AND kind=? AND params_hash=?`,
		figureID, kind, paramsHash).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query geom cache: %w", err)
	}
	// touch
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = db.ExecContext(ctx, `UPDATE geom_cache SET last_access=? WHERE figure_id=? AND kind=? AND params_hash=?`,
		now, figureID, kind, paramsHash)
	return blob, nil
}

// PutGeometry upserts a geometry blob and enforces the cache size cap via LRU eviction.
func PutGeometry(ctx context.Context, projectRoot string, figureID, kind, paramsHash string, blob []byte) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	if kind != GeomKindOutline && kind != GeomKindSeam {
		return fmt.Errorf("invalid kind: %s", kind)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, `INSERT INTO geom_cache(figure_id,kind,params_hash,geom_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(figure_id,kind,params_hash) DO UPDATE SET geom_blob=excluded.geom_blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		figureID, kind, paramsHash, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert geom cache: %w", err)
	}
	capBytes := MaxGeomCacheBytesFromEnv()
	if capBytes > 0 {
		if err := EvictGeometryToFit(ctx, db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreateGeometry fetches a cached blob or generates and stores it using
// the provided generator.
func GetOrCreateGeometry(ctx context.Context, projectRoot string, figureID, kind, paramsHash string, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetGeometry(ctx, projectRoot, figureID, kind, paramsHash); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := PutGeometry(ctx, projectRoot, figureID, kind, paramsHash, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictGeometryToFit deletes least-recently-used rows until total size <= capBytes.
func EvictGeometryToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM geom_cache`).Scan(&total); err != nil {
		return fmt.Errorf("sum geom cache size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	// Victims ordered by last_access asc (oldest first), NULLs first
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM geom_cache ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]int64, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before attempting to write
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	del := `DELETE FROM geom_cache WHERE id IN (` + placeholders(len(toDelete)) + `)`
	args := make([]any, len(toDelete))
	for i, v := range toDelete {
		args[i] = v
	}
	if _, err := db.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalGeometryBytes returns total bytes tracked by geom_cache.size.
func TotalGeometryBytes(ctx context.Context, projectRoot string) (int64, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM geom_cache`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxGeomCacheBytesFromEnv reads GPS_GEOM_CACHE_MAX_BYTES, defaulting to 64MB if unset.
func MaxGeomCacheBytesFromEnv() int64 {
	v := os.Getenv("GPS_GEOM_CACHE_MAX_BYTES")
	if v == "" {
		return 64 * 1024 * 1024 // 64MB
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 64 * 1024 * 1024
	}
	return n
}
