/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Rect is an axis-aligned rectangle given by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX and MaxY return the far edges.
func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Union returns the smallest rect containing both. Empty rects are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	minX, minY := min(r.X, o.X), min(r.Y, o.Y)
	maxX, maxY := max(r.MaxX(), o.MaxX()), max(r.MaxY(), o.MaxY())
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Quad is the rectangle the glyph's atlas cell covers, in layout coordinates:
// the pen position shifted by the glyph offsets. Offsets follow BMFont and
// point down from the line top, so a renderer with a downward Y axis can use
// the rect directly after translating by the block height.
func (pg PositionedGlyph) Quad() Rect {
	return Rect{
		X: pg.Position.X + pg.Glyph.XOffset,
		Y: pg.Position.Y + pg.Glyph.YOffset,
		W: pg.Glyph.Width,
		H: pg.Glyph.Height,
	}
}

// AtlasRect is the glyph's source rectangle in its atlas page.
func (pg PositionedGlyph) AtlasRect() Rect {
	return Rect{X: pg.Glyph.X, Y: pg.Glyph.Y, W: pg.Glyph.Width, H: pg.Glyph.Height}
}

// Bounds is the union of all glyph quads. Zero-sized glyphs (tabs, spaces
// without ink) do not contribute.
func (r Result) Bounds() Rect {
	var b Rect
	for _, g := range r.Glyphs {
		b = b.Union(g.Quad())
	}
	return b
}
