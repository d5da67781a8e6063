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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestOpenIndexCreatesWALAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fonts.db")
	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex error: %v", err)
	}
	defer ix.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := ix.db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','fonts','glyphs','kernings','pages')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 6 {
		t.Fatalf("expected 6 tables, got %d", cnt)
	}
	v, err := ix.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("SchemaVersion = %d, %v; want %d", v, err, schemaVersion)
	}
}

func TestOpenIndexRequiresPath(t *testing.T) {
	if _, err := OpenIndex("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

// TestMigrations_UpgradeV1ToV2 ensures that an older DB (schema=1) gains the source column and glyph code index.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fonts.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE fonts (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE, face TEXT, size REAL, info_json TEXT NOT NULL DEFAULT '{}',
			line_height REAL NOT NULL, base REAL NOT NULL, scale_w REAL, scale_h REAL, packed INTEGER NOT NULL DEFAULT 0, updated_at TEXT NOT NULL);`,
		`INSERT INTO fonts(name, line_height, base, updated_at) VALUES('old', 20, 16, '2020-01-01T00:00:00Z');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()
	if v, _ := ix.SchemaVersion(ctx); v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	var cnt int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_glyphs_code'`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected glyph code index after migration, got %d", cnt)
	}
	fonts, err := ix.ListFonts(ctx)
	if err != nil {
		t.Fatalf("ListFonts: %v", err)
	}
	if len(fonts) != 1 || fonts[0].Name != "old" || fonts[0].Source != "" {
		t.Fatalf("existing rows not kept: %#v", fonts)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fonts.db")
	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	ix.Close()
	ix, err = OpenIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ix.Close()
	if v, _ := ix.SchemaVersion(context.Background()); v != schemaVersion {
		t.Fatalf("schema = %d after reopen", v)
	}
}
