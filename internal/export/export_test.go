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
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmtext/internal/bmfont"
	"bmtext/internal/textlayout"
)

func boxFont() *bmfont.Font {
	f := bmfont.New(bmfont.Common{LineHeight: 20, Base: 16})
	f.AddGlyph(bmfont.Glyph{ID: 'A', Width: 10, Height: 14, XAdvance: 10})
	f.AddGlyph(bmfont.Glyph{ID: 'B', Width: 12, Height: 14, XAdvance: 12})
	f.AddGlyph(bmfont.Glyph{ID: ' ', XAdvance: 6})
	return f
}

func builtinLayout(t *testing.T, text string) (textlayout.Result, *Atlas) {
	t.Helper()
	f, page := bmfont.Builtin()
	res := textlayout.Layout(f, text, textlayout.DefaultOptions())
	require.NotEmpty(t, res.Glyphs)
	return res, &Atlas{Pages: []image.Image{page}, Files: []string{"builtin.png"}}
}

func hasInk(img *image.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R < 128 && c.G < 128 && c.B < 128 {
				return true
			}
		}
	}
	return false
}

func TestRenderPNG_Size(t *testing.T) {
	res := textlayout.Layout(boxFont(), "AB", textlayout.DefaultOptions())

	img := RenderPNG(res, nil, Options{Margin: 2})
	assert.Equal(t, image.Rect(0, 0, 26, 20), img.Bounds())
	assert.True(t, hasInk(img), "glyph outlines expected")
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))

	img = RenderPNG(res, nil, Options{Margin: 2, Scale: 2})
	assert.Equal(t, image.Rect(0, 0, 52, 40), img.Bounds())
}

func TestRenderPNG_BuiltinAtlas(t *testing.T) {
	res, atlas := builtinLayout(t, "Hi")
	img := RenderPNG(res, atlas, Options{Margin: 1})
	assert.True(t, hasInk(img))

	blank := RenderPNG(textlayout.Layout(boxFont(), "", textlayout.DefaultOptions()), atlas, Options{})
	assert.False(t, hasInk(blank))
}

func TestRenderPNG_OpaquePageUsesLuminance(t *testing.T) {
	// black page, white 4x4 cell at x=4
	page := image.NewGray(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 4; x < 8; x++ {
			page.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	f := bmfont.New(bmfont.Common{LineHeight: 4, Base: 4})
	f.AddGlyph(bmfont.Glyph{ID: 'A', X: 0, Width: 4, Height: 4, XAdvance: 4})
	f.AddGlyph(bmfont.Glyph{ID: 'B', X: 4, Width: 4, Height: 4, XAdvance: 4})
	atlas := &Atlas{Pages: []image.Image{page}}

	empty := RenderPNG(textlayout.Layout(f, "A", textlayout.DefaultOptions()), atlas, Options{})
	assert.False(t, hasInk(empty), "black cell of an opaque page must not paint ink")

	filled := RenderPNG(textlayout.Layout(f, "B", textlayout.DefaultOptions()), atlas, Options{})
	assert.True(t, hasInk(filled))
}

func TestRenderPNG_Guides(t *testing.T) {
	res := textlayout.Layout(boxFont(), "A\nB", textlayout.DefaultOptions())
	red := color.RGBA{R: 255, A: 255}
	img := RenderPNG(res, nil, Options{Guides: true, GuideColor: red})
	// first baseline: block top (0) + base (16)
	assert.Equal(t, red, img.RGBAAt(5, 16))
}

func TestWriteSVG(t *testing.T) {
	res := textlayout.Layout(boxFont(), "A B", textlayout.DefaultOptions())
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, res, nil, Options{}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	// background plus one outline per inked glyph; the space has no quad
	assert.Equal(t, 3, strings.Count(out, "<rect"))

	res, atlas := builtinLayout(t, "Hi")
	buf.Reset()
	require.NoError(t, WriteSVG(&buf, res, atlas, Options{Guides: true}))
	out = buf.String()
	assert.Equal(t, 2, strings.Count(out, `xlink:href="builtin.png"`))
	assert.Contains(t, out, "<line ")

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, res, &Atlas{Pages: atlas.Pages}, Options{}))
	assert.Equal(t, 2, strings.Count(buf.String(), `xlink:href="data:image/png;base64,`))
}

func TestWritePDF(t *testing.T) {
	res, atlas := builtinLayout(t, "Hi\nthere")
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, res, atlas, Options{Scale: 2, Guides: true}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, WritePDF(&buf, textlayout.Layout(boxFont(), "AB", textlayout.DefaultOptions()), nil, Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.png": FormatPNG, "b.SVG": FormatSVG, "dir/c.pdf": FormatPDF} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got)
	}
	_, err := FormatFromPath("x.gif")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	res, atlas := builtinLayout(t, "ok")
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.svg", "sub/out.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, res, atlas, Options{}), name)
		st, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}
	assert.Error(t, WriteFile(filepath.Join(dir, "out.bmp"), res, atlas, Options{}))
}
