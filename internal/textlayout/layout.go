/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout positions bitmap-font glyphs: it word-wraps text into
// lines, applies kerning and letter spacing, aligns each line within the
// block and reports the block metrics a quad builder needs.
//
// Layout is a pure function of (text, font, options). The font is only read,
// so one *bmfont.Font may back concurrent layouts; an Engine, which caches
// per-run fallback glyphs, must not be shared between goroutines.
package textlayout

import (
	"log/slog"

	"bmtext/internal/bmfont"
	applog "bmtext/internal/log"
)

// Reference glyphs for the x-height and cap-height metrics, in priority order.
var (
	xHeightRunes   = []rune{'x', 'e', 'a', 'o', 'n', 's', 'r', 'c', 'u', 'm', 'v', 'w', 'z'}
	capHeightRunes = []rune{'H', 'I', 'N', 'E', 'F', 'K', 'L', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}
)

// Point is a pen position. Y grows upward; a block's first line sits at -Height.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionedGlyph is a glyph placed at Position for the rune at CharIndex.
type PositionedGlyph struct {
	Position  Point        `json:"position"`
	Glyph     bmfont.Glyph `json:"glyph"`
	CharIndex int          `json:"index"`
	LineIndex int          `json:"line"`
}

// Result is the outcome of one layout run.
type Result struct {
	Glyphs     []PositionedGlyph `json:"glyphs"`
	Lines      []Line            `json:"lines"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Baseline   float64           `json:"baseline"`
	Descender  float64           `json:"descender"`
	Ascender   float64           `json:"ascender"`
	XHeight    float64           `json:"xHeight"`
	CapHeight  float64           `json:"capHeight"`
	LineHeight float64           `json:"lineHeight"`
	LineCount  int               `json:"lineCount"`
}

// Engine lays out text with one font.
type Engine struct {
	font *bmfont.Font
	log  *slog.Logger

	// per-run state
	opt      Options
	space    bmfont.Glyph
	tab      bmfont.Glyph
	hasSpace bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an engine for font. A nil font or one without glyphs lays out nothing.
func NewEngine(font *bmfont.Font, opts ...Option) *Engine {
	e := &Engine{font: font}
	for _, o := range opts {
		o(e)
	}
	if e.log == nil {
		e.log = applog.WithComponent("textlayout")
	}
	return e
}

// Layout is a one-shot helper that runs a fresh Engine.
//
// The zero Options has Width 0, which wraps after every glyph. Start from
// DefaultOptions for an unbounded single-line layout.
func Layout(font *bmfont.Font, text string, opt Options) Result {
	return NewEngine(font, WithLogger(applog.Discard())).Layout(text, opt)
}

// Layout positions every visible glyph of text and computes the block metrics.
// Rune indexes (CharIndex, Line.Start/End, Options.Start/End) count runes, not bytes.
func (e *Engine) Layout(text string, opt Options) Result {
	runes := []rune(text)
	e.opt = opt
	e.setupFallbacks()

	start, end := opt.span(len(runes))
	lines := e.wrap(runes, start, end)

	maxLineWidth := opt.minWidth()
	for _, ln := range lines {
		maxLineWidth = max(maxLineWidth, ln.Width)
	}

	var common bmfont.Common
	if e.font != nil {
		common = e.font.Common
	}
	lineHeight := opt.LineHeight
	if lineHeight == 0 {
		lineHeight = common.LineHeight
	}
	descender := lineHeight - common.Base
	xHeight := referenceHeight(e.font, xHeightRunes)
	height := lineHeight*float64(len(lines)) - descender

	res := Result{
		Lines:      lines,
		Width:      maxLineWidth,
		Height:     height,
		Baseline:   common.Base,
		Descender:  descender,
		Ascender:   lineHeight - descender - xHeight,
		XHeight:    xHeight,
		CapHeight:  referenceHeight(e.font, capHeightRunes),
		LineHeight: lineHeight,
		LineCount:  len(lines),
	}

	y := -height
	for li, ln := range lines {
		var (
			x      float64
			last   bmfont.Glyph
			placed bool
		)
		offset := alignOffset(opt.Align, maxLineWidth, ln.Width)
		for i := ln.Start; i < ln.End; i++ {
			g, ok := e.glyph(runes[i])
			if !ok {
				continue
			}
			if placed {
				x += e.font.Kerning(last.ID, g.ID)
			}
			res.Glyphs = append(res.Glyphs, PositionedGlyph{
				Position:  Point{X: x + offset, Y: y},
				Glyph:     g,
				CharIndex: i,
				LineIndex: li,
			})
			x += g.XAdvance + opt.LetterSpacing
			last, placed = g, true
		}
		y += lineHeight
	}

	e.log.Debug("layout done",
		slog.Int("runes", end-start),
		slog.Int("lines", res.LineCount),
		slog.Int("glyphs", len(res.Glyphs)),
		slog.Float64("width", res.Width),
		slog.Float64("height", res.Height),
	)
	return res
}

// setupFallbacks builds the space and tab stand-ins for this run.
func (e *Engine) setupFallbacks() {
	e.space, e.hasSpace = bmfont.SpaceFallback(e.font)
	e.tab = bmfont.Glyph{}
	if e.hasSpace {
		e.tab = bmfont.TabFallback(e.space, e.opt.tabSize())
	}
}

// glyph resolves code to a glyph, substituting the run's tab and space fallbacks.
func (e *Engine) glyph(code rune) (bmfont.Glyph, bool) {
	if g, ok := e.font.Glyph(code); ok {
		return g, true
	}
	if !e.hasSpace {
		return bmfont.Glyph{}, false
	}
	switch code {
	case bmfont.TabID:
		return e.tab, true
	case bmfont.SpaceID:
		return e.space, true
	}
	return bmfont.Glyph{}, false
}

func alignOffset(a Alignment, blockWidth, lineWidth float64) float64 {
	switch a {
	case AlignCenter:
		return (blockWidth - lineWidth) / 2
	case AlignRight:
		return blockWidth - lineWidth
	}
	return 0
}

func referenceHeight(f *bmfont.Font, codes []rune) float64 {
	if g, ok := bmfont.FirstOf(f, codes); ok {
		return g.Height
	}
	return 0
}
