/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a layout result as a PNG, SVG or PDF preview.
//
// Layout coordinates put the first line at y = -Height and grow by one line
// height per line; glyph offsets point down from the line top. Translating by
// the block height therefore yields a top-left origin with Y growing down,
// which is what all three output formats use.
package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"bmtext/internal/textlayout"
)

// Options controls preview rendering. Zero values get defaults: Scale 1,
// black ink on a white background.
type Options struct {
	Scale      float64 // output units per layout unit
	Margin     float64 // layout units around the block
	Guides     bool    // draw block box and per-line baselines
	Ink        color.RGBA
	Background color.RGBA
	GuideColor color.RGBA
}

// Atlas carries the font's page images. A nil Atlas, or a glyph whose page is
// missing, is drawn as its quad outline.
type Atlas struct {
	Pages []image.Image // decoded pages indexed by Glyph.Page
	Files []string      // page file names, referenced by SVG output
}

func (a *Atlas) page(i int) image.Image {
	if a == nil || i < 0 || i >= len(a.Pages) {
		return nil
	}
	return a.Pages[i]
}

func (a *Atlas) file(i int) string {
	if a == nil || i < 0 || i >= len(a.Files) {
		return ""
	}
	return a.Files[i]
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 || math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		o.Scale = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Ink == (color.RGBA{}) {
		o.Ink = color.RGBA{A: 255}
	}
	if o.Background == (color.RGBA{}) {
		o.Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.GuideColor == (color.RGBA{}) {
		o.GuideColor = color.RGBA{R: 255, A: 255}
	}
	return o
}

// frame maps layout coordinates into output coordinates.
type frame struct {
	box    textlayout.Rect // layout-space area covered by the output
	margin float64
	scale  float64
}

// newFrame covers the block box [0, Width] x [-Height, 0] and every glyph quad.
func newFrame(res textlayout.Result, opt Options) frame {
	box := textlayout.Rect{X: 0, Y: -res.Height, W: res.Width, H: res.Height}
	box = box.Union(res.Bounds())
	return frame{box: box, margin: opt.Margin, scale: opt.Scale}
}

// size is the output size in output units.
func (f frame) size() (w, h float64) {
	return (f.box.W + 2*f.margin) * f.scale, (f.box.H + 2*f.margin) * f.scale
}

func (f frame) point(x, y float64) (float64, float64) {
	return (x - f.box.X + f.margin) * f.scale, (y - f.box.Y + f.margin) * f.scale
}

func (f frame) rect(r textlayout.Rect) textlayout.Rect {
	x, y := f.point(r.X, r.Y)
	return textlayout.Rect{X: x, Y: y, W: r.W * f.scale, H: r.H * f.scale}
}

// blockRect is the block box, Width by Height.
func (f frame) blockRect(res textlayout.Result) textlayout.Rect {
	return f.rect(textlayout.Rect{X: 0, Y: -res.Height, W: res.Width, H: res.Height})
}

// baselines returns the y of each line's baseline in output units.
func (f frame) baselines(res textlayout.Result) []float64 {
	out := make([]float64, res.LineCount)
	for i := range out {
		_, out[i] = f.point(0, -res.Height+float64(i)*res.LineHeight+res.Baseline)
	}
	return out
}

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png", "svg", "pdf":
		return Format(ext), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", ext)
	}
}

// Write renders res in the given format.
func Write(w io.Writer, format Format, res textlayout.Result, atlas *Atlas, opt Options) error {
	switch format {
	case FormatPNG:
		return WritePNG(w, res, atlas, opt)
	case FormatSVG:
		return WriteSVG(w, res, atlas, opt)
	case FormatPDF:
		return WritePDF(w, res, atlas, opt)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteFile renders res to path, choosing the format from its extension.
func WriteFile(path string, res textlayout.Result, atlas *Atlas, opt Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", format, err)
	}
	if err := Write(f, format, res, atlas, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", format, err)
	}
	return nil
}
