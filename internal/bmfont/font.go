/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bmfont holds BMFont-style bitmap font data: the glyph table, the
// kerning table and the common line metrics, plus loaders for the text and
// JSON descriptor formats produced by common atlas generators.
//
// A Font is read-only once loaded and may be shared across goroutines.
package bmfont

import "sort"

// Glyph is the metric and atlas record of one character in a bitmap font.
// X, Y, Page and Channel locate the glyph in the atlas; layout never reads them.
type Glyph struct {
	ID       rune    `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	XOffset  float64 `json:"xoffset"`
	YOffset  float64 `json:"yoffset"`
	XAdvance float64 `json:"xadvance"`
	Page     int     `json:"page"`
	Channel  int     `json:"chnl"`
}

// Info mirrors the descriptive "info" block. Only Face and Size are used by tooling.
type Info struct {
	Face     string
	Size     float64
	Bold     bool
	Italic   bool
	Charset  string
	Unicode  bool
	StretchH float64
	Smooth   bool
	AA       int
	Padding  [4]float64
	Spacing  [2]float64
}

// Common holds the line metrics shared by all glyphs.
type Common struct {
	LineHeight float64
	Base       float64 // distance from the line top to the baseline
	ScaleW     float64
	ScaleH     float64
	Pages      int
	Packed     bool
}

// Kerning is one directed pair adjustment.
type Kerning struct {
	First  rune
	Second rune
	Amount float64
}

// Font is a bitmap font: glyphs in table order, an id index and a directed kerning table.
type Font struct {
	Info   Info
	Common Common
	Pages  []string

	glyphs   []Glyph
	index    map[rune]int
	kernings map[rune]map[rune]float64
}

// New returns an empty font with the given line metrics.
func New(common Common) *Font {
	return &Font{Common: common, index: map[rune]int{}}
}

// AddGlyph inserts g. A glyph with the same id replaces the earlier one in place,
// keeping one glyph per id.
func (f *Font) AddGlyph(g Glyph) {
	if f.index == nil {
		f.index = map[rune]int{}
	}
	if i, ok := f.index[g.ID]; ok {
		f.glyphs[i] = g
		return
	}
	f.index[g.ID] = len(f.glyphs)
	f.glyphs = append(f.glyphs, g)
}

// Glyph returns the glyph stored for code.
func (f *Font) Glyph(code rune) (Glyph, bool) {
	if f == nil {
		return Glyph{}, false
	}
	i, ok := f.index[code]
	if !ok {
		return Glyph{}, false
	}
	return f.glyphs[i], true
}

// HasGlyphs reports whether the glyph table is non-empty.
func (f *Font) HasGlyphs() bool { return f != nil && len(f.glyphs) > 0 }

// NumGlyphs returns the glyph count.
func (f *Font) NumGlyphs() int {
	if f == nil {
		return 0
	}
	return len(f.glyphs)
}

// Glyphs returns the glyph table in insertion order. Callers must not modify it.
func (f *Font) Glyphs() []Glyph {
	if f == nil {
		return nil
	}
	return f.glyphs
}

// FirstGlyph returns the first glyph of the table.
func (f *Font) FirstGlyph() (Glyph, bool) {
	if !f.HasGlyphs() {
		return Glyph{}, false
	}
	return f.glyphs[0], true
}

// SetKerning stores the adjustment applied when second directly follows first.
func (f *Font) SetKerning(first, second rune, amount float64) {
	if f.kernings == nil {
		f.kernings = map[rune]map[rune]float64{}
	}
	row, ok := f.kernings[first]
	if !ok {
		row = map[rune]float64{}
		f.kernings[first] = row
	}
	row[second] = amount
}

// Kerning returns the adjustment for the ordered pair (prev, next), or 0 when the
// table, the row for prev or the pair itself is absent. The table is not symmetric.
func (f *Font) Kerning(prev, next rune) float64 {
	if f == nil || f.kernings == nil {
		return 0
	}
	row, ok := f.kernings[prev]
	if !ok {
		return 0
	}
	return row[next]
}

// NumKernings returns the number of stored pairs.
func (f *Font) NumKernings() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, row := range f.kernings {
		n += len(row)
	}
	return n
}

// Kernings lists all pairs ordered by (First, Second).
func (f *Font) Kernings() []Kerning {
	if f == nil {
		return nil
	}
	out := make([]Kerning, 0, f.NumKernings())
	for first, row := range f.kernings {
		for second, amt := range row {
			out = append(out, Kerning{First: first, Second: second, Amount: amt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Second < out[j].Second
	})
	return out
}
