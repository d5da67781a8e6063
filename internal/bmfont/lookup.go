/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bmfont

const (
	// SpaceID and TabID are the character codes that receive fallback glyphs.
	SpaceID rune = ' '
	TabID   rune = '\t'
)

// mWidths are tried in order when a font has no space glyph.
var mWidths = []rune{'m', 'w'}

// SpaceFallback picks the glyph that stands in for a missing space: the font's
// own space glyph, else 'm' or 'w', else the first glyph of the table.
func SpaceFallback(f *Font) (Glyph, bool) {
	if !f.HasGlyphs() {
		return Glyph{}, false
	}
	if g, ok := f.Glyph(SpaceID); ok {
		return g, true
	}
	for _, r := range mWidths {
		if g, ok := f.Glyph(r); ok {
			return g, true
		}
	}
	return f.FirstGlyph()
}

// TabFallback derives the synthetic tab glyph from the space fallback: every metric
// is zeroed except the advance, which spans tabSize spaces.
func TabFallback(space Glyph, tabSize float64) Glyph {
	g := space
	g.ID = TabID
	g.X, g.Y = 0, 0
	g.Width, g.Height = 0, 0
	g.XOffset, g.YOffset = 0, 0
	g.XAdvance = tabSize * space.XAdvance
	return g
}

// FirstOf returns the first glyph present among codes, in order.
func FirstOf(f *Font, codes []rune) (Glyph, bool) {
	for _, r := range codes {
		if g, ok := f.Glyph(r); ok {
			return g, true
		}
	}
	return Glyph{}, false
}
