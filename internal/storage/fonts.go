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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bmtext/internal/bmfont"
)

// ErrFontNotFound is returned when no font with the requested name is indexed.
var ErrFontNotFound = errors.New("font not found")

// FontSummary describes one indexed font.
type FontSummary struct {
	Name       string
	Face       string
	Size       float64
	LineHeight float64
	Glyphs     int
	Kernings   int
	Source     string
	UpdatedAt  time.Time
}

// SaveFont stores f under name, replacing any font already indexed under that name.
// source records where the font was imported from; atlas pages are resolved relative to it.
func (ix *Index) SaveFont(ctx context.Context, name string, f *bmfont.Font, source string) error {
	name = fontName(name)
	l := ix.log.With(slog.String("op", "save_font"), slog.String("font", name))
	if name == "" {
		return errors.New("font name is required")
	}
	if !f.HasGlyphs() {
		return fmt.Errorf("save %s: %w", name, bmfont.ErrNoGlyphs)
	}
	info, err := json.Marshal(f.Info)
	if err != nil {
		return fmt.Errorf("encode info: %w", err)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFontTx(ctx, tx, name); err != nil && !errors.Is(err, ErrFontNotFound) {
		return err
	}
	c := f.Common
	res, err := tx.ExecContext(ctx, `INSERT INTO fonts(name, face, size, info_json, line_height, base, scale_w, scale_h, packed, source, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, f.Info.Face, f.Info.Size, string(info), c.LineHeight, c.Base, c.ScaleW, c.ScaleH, c.Packed, source,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert font: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("font id: %w", err)
	}

	gs, err := tx.PrepareContext(ctx, `INSERT INTO glyphs(font_id, seq, code, x, y, width, height, xoffset, yoffset, xadvance, page, chnl)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare glyph insert: %w", err)
	}
	defer gs.Close()
	for seq, g := range f.Glyphs() {
		if _, err := gs.ExecContext(ctx, id, seq, g.ID, g.X, g.Y, g.Width, g.Height, g.XOffset, g.YOffset, g.XAdvance, g.Page, g.Channel); err != nil {
			return fmt.Errorf("insert glyph %d: %w", g.ID, err)
		}
	}
	for _, k := range f.Kernings() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kernings(font_id, first, second, amount) VALUES(?, ?, ?, ?)`,
			id, k.First, k.Second, k.Amount); err != nil {
			return fmt.Errorf("insert kerning %d/%d: %w", k.First, k.Second, err)
		}
	}
	for i, p := range f.Pages {
		if _, err := tx.ExecContext(ctx, `INSERT INTO pages(font_id, idx, file) VALUES(?, ?, ?)`, id, i, p); err != nil {
			return fmt.Errorf("insert page %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	l.Info("font indexed", slog.Int("glyphs", f.NumGlyphs()), slog.Int("kernings", f.NumKernings()))
	return nil
}

// LoadFont rebuilds the font indexed under name. The second result is the
// import source recorded by SaveFont.
func (ix *Index) LoadFont(ctx context.Context, name string) (*bmfont.Font, string, error) {
	name = fontName(name)
	var (
		id     int64
		info   string
		c      bmfont.Common
		source string
	)
	err := ix.db.QueryRowContext(ctx, `SELECT id, info_json, line_height, base, scale_w, scale_h, packed, source FROM fonts WHERE name=?`, name).
		Scan(&id, &info, &c.LineHeight, &c.Base, &c.ScaleW, &c.ScaleH, &c.Packed, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%q: %w", name, ErrFontNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read font %q: %w", name, err)
	}

	f := bmfont.New(c)
	if err := json.Unmarshal([]byte(info), &f.Info); err != nil {
		return nil, "", fmt.Errorf("decode info of %q: %w", name, err)
	}

	pages, err := ix.db.QueryContext(ctx, `SELECT file FROM pages WHERE font_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, "", fmt.Errorf("read pages: %w", err)
	}
	for pages.Next() {
		var p string
		if err := pages.Scan(&p); err != nil {
			_ = pages.Close()
			return nil, "", fmt.Errorf("scan page: %w", err)
		}
		f.Pages = append(f.Pages, p)
	}
	if err := closeRows(pages); err != nil {
		return nil, "", err
	}
	f.Common.Pages = len(f.Pages)

	glyphs, err := ix.db.QueryContext(ctx, `SELECT code, x, y, width, height, xoffset, yoffset, xadvance, page, chnl FROM glyphs WHERE font_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, "", fmt.Errorf("read glyphs: %w", err)
	}
	for glyphs.Next() {
		var g bmfont.Glyph
		if err := glyphs.Scan(&g.ID, &g.X, &g.Y, &g.Width, &g.Height, &g.XOffset, &g.YOffset, &g.XAdvance, &g.Page, &g.Channel); err != nil {
			_ = glyphs.Close()
			return nil, "", fmt.Errorf("scan glyph: %w", err)
		}
		f.AddGlyph(g)
	}
	if err := closeRows(glyphs); err != nil {
		return nil, "", err
	}

	kerns, err := ix.db.QueryContext(ctx, `SELECT first, second, amount FROM kernings WHERE font_id=?`, id)
	if err != nil {
		return nil, "", fmt.Errorf("read kernings: %w", err)
	}
	for kerns.Next() {
		var k bmfont.Kerning
		if err := kerns.Scan(&k.First, &k.Second, &k.Amount); err != nil {
			_ = kerns.Close()
			return nil, "", fmt.Errorf("scan kerning: %w", err)
		}
		f.SetKerning(k.First, k.Second, k.Amount)
	}
	if err := closeRows(kerns); err != nil {
		return nil, "", err
	}
	return f, source, nil
}

// ListFonts returns a summary of every indexed font ordered by name.
func (ix *Index) ListFonts(ctx context.Context) ([]FontSummary, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT f.name, COALESCE(f.face, ''), COALESCE(f.size, 0), f.line_height, f.source, f.updated_at,
			(SELECT COUNT(*) FROM glyphs g WHERE g.font_id = f.id),
			(SELECT COUNT(*) FROM kernings k WHERE k.font_id = f.id)
		FROM fonts f ORDER BY f.name`)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	var out []FontSummary
	for rows.Next() {
		var (
			s  FontSummary
			ts string
		)
		if err := rows.Scan(&s.Name, &s.Face, &s.Size, &s.LineHeight, &s.Source, &ts, &s.Glyphs, &s.Kernings); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan font: %w", err)
		}
		s.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, s)
	}
	return out, closeRows(rows)
}

// DeleteFont removes the font indexed under name.
func (ix *Index) DeleteFont(ctx context.Context, name string) error {
	name = fontName(name)
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := deleteFontTx(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

// deleteFontTx removes child rows explicitly so deletion does not depend on
// the foreign_keys pragma being in effect.
func deleteFontTx(ctx context.Context, tx *sql.Tx, name string) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM fonts WHERE name=?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%q: %w", name, ErrFontNotFound)
	}
	if err != nil {
		return fmt.Errorf("find font %q: %w", name, err)
	}
	for _, q := range []string{
		`DELETE FROM glyphs WHERE font_id=?`,
		`DELETE FROM kernings WHERE font_id=?`,
		`DELETE FROM pages WHERE font_id=?`,
		`DELETE FROM fonts WHERE id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete font %q: %w", name, err)
		}
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate rows: %w", err)
	}
	return rows.Close()
}

// fontName is the stored form of a font name.
func fontName(name string) string { return strings.TrimSpace(name) }
