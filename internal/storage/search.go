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
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Filters are optional. Types restrict to fragment kinds like figure_name,
// figure_notes, figure_text, dart_label, sheet_name; Kinds restrict to the
// figure kind (polygon, seam, ...). SheetID narrows to one sheet.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text    string
	Types   []string
	Kinds   []string
	SheetID string
	Limit   int
	Offset  int
}

// SearchResult represents a single match row.
// Snippet is an optional highlighted excerpt using [ ] markers when FTS text is used.
// FigureID is empty for document- or sheet-level matches.
type SearchResult struct {
	DocID    int64
	Type     string
	Path     string
	SheetID  string
	FigureID string
	Snippet  string
}

// Search performs full-text search with optional filters over the embedded index.
// When q.Text is empty, it falls back to a non-FTS scan over documents with filters applied.
func Search(ctx context.Context, projectRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.sheet_id,''), COALESCE(d.figure_id,''), snippet(fts_documents, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.sheet_id,''), COALESCE(d.figure_id,''), ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if s := strings.TrimSpace(q.SheetID); s != "" {
		sb.WriteString(" AND d.sheet_id = ?\n")
		args = append(args, s)
	}
	// Figure-kind filter needs the catalog; matches rows tied to a figure of one
	// of the kinds.
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND d.figure_id IS NOT NULL AND EXISTS (SELECT 1 FROM figures f WHERE f.figure_id = d.figure_id AND f.kind IN (" + placeholders(len(q.Kinds)) + "))\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.sheet_id NULLS LAST, d.figure_id NULLS LAST, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &r.SheetID, &r.FigureID, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DerivationLink records that child was generated from parent (seam piece
// from its pattern piece).
type DerivationLink struct {
	ParentID string
	ChildID  string
	Relation string
}

// WhereUsed lists figures derived from the given figure via derivation links.
func WhereUsed(ctx context.Context, projectRoot string, figureID string) ([]DerivationLink, error) {
	if strings.TrimSpace(figureID) == "" {
		return nil, errors.New("figure id is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryDerivations(ctx, db, `SELECT parent_id, child_id, relation FROM derivations WHERE parent_id = ? ORDER BY child_id`, figureID)
}

// DerivedFrom lists the figures the given figure was generated from.
func DerivedFrom(ctx context.Context, projectRoot string, figureID string) ([]DerivationLink, error) {
	if strings.TrimSpace(figureID) == "" {
		return nil, errors.New("figure id is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryDerivations(ctx, db, `SELECT parent_id, child_id, relation FROM derivations WHERE child_id = ? ORDER BY parent_id`, figureID)
}

func queryDerivations(ctx context.Context, db *sql.DB, query string, arg any) ([]DerivationLink, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("derivations query: %w", err)
	}
	defer rows.Close()
	var out []DerivationLink
	for rows.Next() {
		var l DerivationLink
		if err := rows.Scan(&l.ParentID, &l.ChildID, &l.Relation); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
