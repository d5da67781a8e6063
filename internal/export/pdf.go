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
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"bmtext/internal/textlayout"
)

// WritePDF writes res as a one-page PDF sized to the block, one layout unit
// per point times Scale. Glyphs are clipped views of their atlas page; pages
// are embedded once as PNG. Without a page a glyph is drawn as its quad outline.
func WritePDF(w io.Writer, res textlayout.Result, atlas *Atlas, opt Options) error {
	opt = opt.withDefaults()
	fr := newFrame(res, opt)
	width, height := fr.size()
	width, height = max(width, 1), max(height, 1)

	// Use points for 1:1 mapping from layout units to PDF
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetCreator("bmtext", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: width, Ht: height})

	setFillColor(pdf, opt.Background)
	pdf.Rect(0, 0, width, height, "F")

	if opt.Guides {
		setDrawColor(pdf, opt.GuideColor)
		pdf.SetLineWidth(0.2)
		b := fr.blockRect(res)
		pdf.Rect(b.X, b.Y, b.W, b.H, "D")
		for _, y := range fr.baselines(res) {
			pdf.Line(b.X, y, b.MaxX(), y)
		}
	}

	registered := map[int]string{}
	setDrawColor(pdf, opt.Ink)
	pdf.SetLineWidth(0.5)
	for _, pg := range res.Glyphs {
		q := pg.Quad()
		if q.Empty() {
			continue
		}
		d := fr.rect(q)
		page := atlas.page(pg.Glyph.Page)
		if page == nil {
			pdf.Rect(d.X, d.Y, d.W, d.H, "D")
			continue
		}
		name, ok := registered[pg.Glyph.Page]
		if !ok {
			var err error
			if name, err = registerPage(pdf, pg.Glyph.Page, page); err != nil {
				return err
			}
			registered[pg.Glyph.Page] = name
		}
		// Place the whole page scaled so the glyph cell lands on the quad, clipped to the quad.
		a := pg.AtlasRect()
		sx, sy := d.W/a.W, d.H/a.H
		pb := page.Bounds()
		pdf.ClipRect(d.X, d.Y, d.W, d.H, false)
		pdf.ImageOptions(name, d.X-a.X*sx, d.Y-a.Y*sy, float64(pb.Dx())*sx, float64(pb.Dy())*sy,
			false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.ClipEnd()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func registerPage(pdf *gofpdf.Fpdf, idx int, page image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return "", fmt.Errorf("encode atlas page %d: %w", idx, err)
	}
	name := fmt.Sprintf("atlas-page-%d", idx)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("register atlas page %d: %w", idx, err)
	}
	return name, nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
