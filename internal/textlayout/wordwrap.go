/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"math"
	"unicode"

	"bmtext/internal/bmfont"
)

// Line is one laid out line: the rune range [Start, End) and its measured width.
type Line struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Width float64 `json:"width"`
}

// measure walks text[start:end) with a pen and stops before the first glyph
// whose advance or ink would reach width. Runes without a glyph are counted
// but move nothing. The reported width is the ink extent of the last placed
// glyph (pen before it plus its width) plus that glyph's xoffset.
func (e *Engine) measure(text []rune, start, end int, width float64) Line {
	if !e.font.HasGlyphs() {
		return Line{Start: start, End: start}
	}
	end = min(end, len(text))
	var (
		pen, inkWidth float64
		count         int
		last          bmfont.Glyph
		placed        bool
	)
	for i := start; i < end; i++ {
		g, ok := e.glyph(text[i])
		if ok {
			if placed {
				pen += e.font.Kerning(last.ID, g.ID)
			}
			nextPen := pen + g.XAdvance + e.opt.LetterSpacing
			nextWidth := pen + g.Width
			if nextWidth >= width || nextPen >= width {
				break
			}
			pen, inkWidth = nextPen, nextWidth
			last, placed = g, true
		}
		count++
	}
	if placed {
		inkWidth += last.XOffset
	}
	return Line{Start: start, End: start + count, Width: inkWidth}
}

// wrap splits text[start:end) into lines according to the run's mode.
func (e *Engine) wrap(text []rune, start, end int) []Line {
	switch e.opt.Mode {
	case Pre:
		return e.wrapPre(text, start, end, e.opt.Width)
	case NoWrap:
		return e.wrapGreedy(text, start, end, math.Inf(1))
	default:
		return e.wrapGreedy(text, start, end, e.opt.Width)
	}
}

// wrapGreedy is a greedy word wrapper. For each line it
//  1. finds the next '\n' (hard break), which always ends the line;
//  2. skips whitespace at the line start;
//  3. measures how many runes fit in width;
//  4. when the line was cut short, backs up to the last whitespace before the
//     cut and trims the whitespace run preceding it, or, when the word has no
//     whitespace to break on, keeps what fits (at least one rune) so the
//     cursor always advances.
//
// Trailing whitespace is never part of a line's measured width; it is
// swallowed by the next line's leading-whitespace skip.
func (e *Engine) wrapGreedy(text []rune, start, end int, width float64) []Line {
	var lines []Line
	cursor := start
	for cursor < end {
		hardBreak := indexRune(text, '\n', cursor, end)

		for cursor < hardBreak && unicode.IsSpace(text[cursor]) {
			cursor++
		}

		fit := e.measure(text, cursor, hardBreak, width)
		lineEnd := cursor + (fit.End - fit.Start)
		nextStart := lineEnd + 1 // one past the break token

		if lineEnd < hardBreak {
			for lineEnd > cursor && !unicode.IsSpace(text[lineEnd]) {
				lineEnd--
			}
			if lineEnd == cursor {
				// unbreakable word: show what fits, but never less than one rune
				if nextStart > cursor+1 {
					nextStart--
				}
				lineEnd = nextStart
			} else {
				nextStart = lineEnd
				for lineEnd > cursor && unicode.IsSpace(text[lineEnd-1]) {
					lineEnd--
				}
			}
		}

		if lineEnd >= cursor {
			m := e.measure(text, cursor, lineEnd, width)
			lines = append(lines, Line{Start: cursor, End: lineEnd, Width: m.Width})
		}
		cursor = nextStart
	}
	return lines
}

// wrapPre breaks only at '\n', keeps whitespace and clips each line to width.
func (e *Engine) wrapPre(text []rune, start, end int, width float64) []Line {
	var lines []Line
	lineStart := start
	for i := start; i < end; i++ {
		newline := text[i] == '\n'
		if !newline && i != end-1 {
			continue
		}
		lineEnd := i + 1
		if newline {
			lineEnd = i
		}
		lines = append(lines, e.measure(text, lineStart, lineEnd, width))
		lineStart = i + 1
	}
	return lines
}

// indexRune returns the index of r in text[from:to), or to when absent.
func indexRune(text []rune, r rune, from, to int) int {
	for i := from; i < to; i++ {
		if text[i] == r {
			return i
		}
	}
	return to
}
