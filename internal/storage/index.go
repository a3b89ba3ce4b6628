/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopatternstudio/internal/domain"
	"gopatternstudio/internal/geom"
	applog "gopatternstudio/internal/log"
	"gopatternstudio/internal/outline"
	"gopatternstudio/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-project ephemeral/index data under the project root.
	IndexDirName  = ".gps"
	IndexFileName = "index.sqlite"

	// indexSchemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	indexSchemaVersion = 2

	// catalogSteps is the Bezier sampling used for catalog geometry facts.
	// Coarser than export sampling; the numbers are for browsing, not cutting.
	catalogSteps = 16
)

// IndexPath returns the full path to the project's embedded index database file.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-project SQLite index exists at .gps/index.sqlite,
// opens the database, enables WAL mode, and ensures the meta/version tables exist.
// The returned *sql.DB is ready for use. Callers may close it when no longer needed.
func InitOrOpenIndex(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .gps dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .gps dir: %w", err)
	}

	path := IndexPath(projectRoot)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Set reasonable connection pool limits for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Ensure WAL mode is active.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	// Ensure core index schema exists (figures, documents, FTS, derivations, geometry cache, snapshots)
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	// Run migrations to bring DB schema up to date
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	// Seed or update single-row version info
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh DB starts at the current schema version
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, indexSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to indexSchemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > indexSchemaVersion {
		// Never downgrade
		return nil
	}
	for cur < indexSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Add lookup indexes for derivation links
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_derivations_parent ON derivations(parent_id);`,
				`CREATE INDEX IF NOT EXISTS idx_derivations_child ON derivations(child_id);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize (outside the tx)
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('optimize')`); err != nil {
				// best-effort optimize; ignore errors
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Piece catalog: one row per figure with derived geometry facts.
		`CREATE TABLE IF NOT EXISTS figures (
			sheet_id   TEXT NOT NULL,
			figure_id  TEXT NOT NULL,
			name       TEXT,
			kind       TEXT NOT NULL,
			closed     INTEGER NOT NULL DEFAULT 0,
			points     INTEGER NOT NULL DEFAULT 0,
			area       REAL    NOT NULL DEFAULT 0,
			perimeter  REAL    NOT NULL DEFAULT 0,
			bbox_x     REAL,
			bbox_y     REAL,
			bbox_w     REAL,
			bbox_h     REAL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (sheet_id, figure_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_figures_kind ON figures(kind);`,

		// Searchable text fragments: names, notes, labels, text-figure content.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id    INTEGER PRIMARY KEY,
			type      TEXT NOT NULL,
			path      TEXT NOT NULL,
			sheet_id  TEXT,
			figure_id TEXT,
			text      TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_figure ON documents(figure_id);`,

		// Contentless FTS5 index fed from documents via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,

		// Derivation links between figures (seam piece -> parent piece)
		`CREATE TABLE IF NOT EXISTS derivations (
			parent_id TEXT NOT NULL,
			child_id  TEXT NOT NULL,
			relation  TEXT NOT NULL DEFAULT 'seam',
			PRIMARY KEY (parent_id, child_id, relation)
		);`,

		// Figure geometry history blobs
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			figure_id  TEXT NOT NULL,
			ts         TEXT NOT NULL,
			geom_blob  BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_figure_ts ON snapshots(figure_id, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	// Triggers for contentless FTS synchronization with documents.text
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	// Geometry cache table carries extra LRU columns; kept in its own migration
	// helper so older index files gain them in place.
	if err := EnsureGeomCacheMigrated(ctx, db); err != nil {
		return err
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds the index if needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, projectRoot string, doc domain.Document) (bool, error) {
	path := IndexPath(projectRoot)
	// Try to open DB; if fails, attempt backup+delete+rebuild
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, projectRoot, doc); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	// quick_check for corruption
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	// Probe core tables
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM figures LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, projectRoot, doc); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .gps/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty ensures the DB exists and, if the catalog is empty,
// populates it from the given manifest.
func BuildIndexIfEmpty(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM figures;").Scan(&cnt); err != nil {
		return fmt.Errorf("check figures count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return rebuildFromDocument(ctx, db, doc)
}

// UpdateIndex updates the embedded index with changes from the project manifest.
// Minimal safe implementation: replace the derived content from the provided manifest.
func UpdateIndex(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildFromDocument(ctx, db, doc)
}

// RebuildIndex drops and recreates core index tables and rebuilds content from the manifest.
// It preserves meta/version tables. This is a safe operation; the index is derived from pattern.json.
func RebuildIndex(ctx context.Context, projectRoot string, doc domain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS derivations;",
		"DROP TABLE IF EXISTS snapshots;",
		"DROP TABLE IF EXISTS geom_cache;",
		"DROP TABLE IF EXISTS figures;",
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildFromDocument(ctx, db, doc)
}

// rebuildFromDocument replaces the derived tables' content from the given manifest:
// the figures catalog, the searchable documents plus FTS, and the derivation links.
func rebuildFromDocument(ctx context.Context, db *sql.DB, doc domain.Document) error {
	type docRow struct {
		typeStr  string
		path     string
		sheetID  sql.NullString
		figureID sql.NullString
		text     string
	}
	rows := make([]docRow, 0, 64)
	addRow := func(typeStr, path, sheetID, figureID, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		r := docRow{typeStr: typeStr, path: path, text: text}
		if sheetID != "" {
			r.sheetID = sql.NullString{String: sheetID, Valid: true}
		}
		if figureID != "" {
			r.figureID = sql.NullString{String: figureID, Valid: true}
		}
		rows = append(rows, r)
	}

	addRow("doc_name", "document:name", "", "", doc.Name)
	addRow("doc_designer", "document:designer", "", "", doc.Metadata.Designer)
	addRow("doc_collection", "document:collection", "", "", doc.Metadata.Collection)
	addRow("doc_notes", "document:notes", "", "", doc.Metadata.Notes)

	type figRow struct {
		sheetID, figureID, name, kind string
		closed                        bool
		points                        int
		area, perimeter               float64
		bx, by, bw, bh                sql.NullFloat64
	}
	figs := make([]figRow, 0, 64)
	type derivRow struct{ parent, child, relation string }
	derivs := make([]derivRow, 0, 16)

	for _, sh := range doc.Sheets {
		addRow("sheet_name", "sheet:"+sh.ID+":name", sh.ID, "", sh.Name)
		for _, fig := range sh.Figures {
			fpath := "sheet:" + sh.ID + "/figure:" + fig.ID
			addRow("figure_name", fpath+":name", sh.ID, fig.ID, fig.Name)
			addRow("figure_notes", fpath+":notes", sh.ID, fig.ID, fig.Notes)
			if fig.Text != nil {
				addRow("figure_text", fpath+":text", sh.ID, fig.ID, fig.Text.Content)
			}
			for _, d := range fig.Darts {
				addRow("dart_label", fpath+"/dart:"+d.ID, sh.ID, fig.ID, d.Label)
			}

			fr := figRow{
				sheetID:  sh.ID,
				figureID: fig.ID,
				name:     fig.Name,
				kind:     fig.Kind,
				closed:   closedFigure(fig),
			}
			pts := outline.Polyline(fig, catalogSteps)
			fr.points = len(pts)
			for i := 1; i < len(pts); i++ {
				fr.perimeter += pts[i].Sub(pts[i-1]).Len()
			}
			if fr.closed && len(pts) >= 3 {
				fr.perimeter += pts[0].Sub(pts[len(pts)-1]).Len()
				fr.area = math.Abs(geom.SignedArea(pts))
			}
			if box, ok := outline.WorldBounds(fig, catalogSteps); ok {
				fr.bx = sql.NullFloat64{Float64: box.X, Valid: true}
				fr.by = sql.NullFloat64{Float64: box.Y, Valid: true}
				fr.bw = sql.NullFloat64{Float64: box.W, Valid: true}
				fr.bh = sql.NullFloat64{Float64: box.H, Valid: true}
			}
			figs = append(figs, fr)

			if fig.Seam != nil && fig.Seam.ParentID != "" {
				derivs = append(derivs, derivRow{parent: fig.Seam.ParentID, child: fig.ID, relation: "seam"})
			}
		}
	}

	// Write in a transaction: clear derived tables and insert new rows.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range []string{"DELETE FROM documents;", "DELETE FROM figures;", "DELETE FROM derivations;"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear derived tables: %w", err)
		}
	}
	insDoc, err := tx.PrepareContext(ctx, "INSERT INTO documents(type, path, sheet_id, figure_id, text) VALUES(?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert documents: %w", err)
	}
	defer insDoc.Close()
	for _, r := range rows {
		if _, err := insDoc.ExecContext(ctx, r.typeStr, r.path, r.sheetID, r.figureID, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	insFig, err := tx.PrepareContext(ctx, `INSERT INTO figures(sheet_id, figure_id, name, kind, closed, points, area, perimeter, bbox_x, bbox_y, bbox_w, bbox_h, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?);`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert figures: %w", err)
	}
	defer insFig.Close()
	for _, f := range figs {
		closed := 0
		if f.closed {
			closed = 1
		}
		if _, err := insFig.ExecContext(ctx, f.sheetID, f.figureID, f.name, f.kind, closed, f.points, f.area, f.perimeter, f.bx, f.by, f.bw, f.bh, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert figure: %w", err)
		}
	}
	for _, d := range derivs {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO derivations(parent_id, child_id, relation) VALUES(?,?,?)`, d.parent, d.child, d.relation); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert derivation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// closedFigure reports whether the figure encloses area: explicitly closed or
// an inherently closed primitive.
func closedFigure(fig domain.Figure) bool {
	if fig.Closed {
		return true
	}
	return fig.Kind == domain.FigureRect || fig.Kind == domain.FigureCircle
}
