/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"bmtext/internal/textlayout"
)

// WriteSVG writes res as an SVG document. Glyphs with an atlas page are drawn
// as a clipped view of that page (a nested <svg> with a viewBox on the glyph
// cell). The page is referenced by its file name, or embedded as a PNG data
// URI when it has none. Glyphs without a page are drawn as quad outlines.
func WriteSVG(w io.Writer, res textlayout.Result, atlas *Atlas, opt Options) error {
	opt = opt.withDefaults()
	fr := newFrame(res, opt)
	width, height := fr.size()

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n",
		int(math.Ceil(width)), int(math.Ceil(height)), width, height)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", width, height, svgColor(opt.Background))

	if opt.Guides {
		gc := svgColor(opt.GuideColor)
		b := fr.blockRect(res)
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n", b.X, b.Y, b.W, b.H, gc)
		for _, y := range fr.baselines(res) {
			wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.5\"/>\n", b.X, y, b.MaxX(), y, gc)
		}
	}

	ink := svgColor(opt.Ink)
	hrefs := map[int]string{}
	for _, pg := range res.Glyphs {
		q := pg.Quad()
		if q.Empty() {
			continue
		}
		d := fr.rect(q)
		page := atlas.page(pg.Glyph.Page)
		if page == nil {
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n", d.X, d.Y, d.W, d.H, ink)
			continue
		}
		href, ok := hrefs[pg.Glyph.Page]
		if !ok {
			href = atlas.file(pg.Glyph.Page)
			if href == "" {
				var err error
				if href, err = dataURI(page); err != nil {
					return fmt.Errorf("embed atlas page %d: %w", pg.Glyph.Page, err)
				}
			}
			hrefs[pg.Glyph.Page] = href
		}
		a := pg.AtlasRect()
		pb := page.Bounds()
		wf("  <svg x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" viewBox=\"%g %g %g %g\" preserveAspectRatio=\"none\">", d.X, d.Y, d.W, d.H, a.X, a.Y, a.W, a.H)
		wf("<image xlink:href=\"%s\" x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" image-rendering=\"pixelated\"/></svg>\n", escAttr(href), pb.Dx(), pb.Dy())
	}

	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func dataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
