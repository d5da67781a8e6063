/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"bmtext/internal/textlayout"
)

// RenderPNG rasterizes res. Glyph cells are cut from the atlas pages, scaled
// with nearest-neighbour sampling and used as coverage for the ink colour.
// Coverage is the page alpha, or the page luminance when the page is opaque.
func RenderPNG(res textlayout.Result, atlas *Atlas, opt Options) *image.RGBA {
	opt = opt.withDefaults()
	fr := newFrame(res, opt)
	w, h := fr.size()
	img := image.NewRGBA(image.Rect(0, 0, max(1, int(math.Ceil(w))), max(1, int(math.Ceil(h)))))
	draw.Draw(img, img.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	if opt.Guides {
		b := pixelRect(fr.blockRect(res))
		strokeRect(img, b.Min.X, b.Min.Y, b.Max.X-1, b.Max.Y-1, opt.GuideColor)
		for _, y := range fr.baselines(res) {
			hline(img, b.Min.X, b.Max.X-1, int(math.Round(y)), opt.GuideColor)
		}
	}

	ink := image.NewUniform(opt.Ink)
	opaque := map[int]bool{}
	for _, pg := range res.Glyphs {
		q := pg.Quad()
		if q.Empty() {
			continue
		}
		dst := pixelRect(fr.rect(q))
		if dst.Empty() {
			continue
		}
		page := atlas.page(pg.Glyph.Page)
		var src image.Rectangle
		if page != nil {
			src = pixelRect(pg.AtlasRect()).Add(page.Bounds().Min).Intersect(page.Bounds())
		}
		if src.Empty() {
			strokeRect(img, dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1, opt.Ink)
			continue
		}
		op, seen := opaque[pg.Glyph.Page]
		if !seen {
			op = isOpaque(page)
			opaque[pg.Glyph.Page] = op
		}
		mask := glyphMask(page, src, image.Rect(0, 0, dst.Dx(), dst.Dy()), op)
		draw.DrawMask(img, dst, ink, image.Point{}, mask, image.Point{}, draw.Over)
	}
	return img
}

// glyphMask scales the src cell of page into a coverage mask of the given size.
func glyphMask(page image.Image, src, size image.Rectangle, opaque bool) *image.Alpha {
	mask := image.NewAlpha(size)
	if !opaque {
		draw.NearestNeighbor.Scale(mask, size, page, src, draw.Src, nil)
		return mask
	}
	// same one-byte layout: luminance written through the gray view lands in mask
	gray := &image.Gray{Pix: mask.Pix, Stride: mask.Stride, Rect: mask.Rect}
	draw.NearestNeighbor.Scale(gray, size, page, src, draw.Src, nil)
	return mask
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// WritePNG encodes the RenderPNG output to w.
func WritePNG(w io.Writer, res textlayout.Result, atlas *Atlas, opt Options) error {
	if err := png.Encode(w, RenderPNG(res, atlas, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func pixelRect(r textlayout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.MaxX())), int(math.Round(r.MaxY())),
	)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func hline(img *image.RGBA, x0, x1, y int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, col)
	}
}
