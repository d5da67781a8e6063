/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bmfont

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The text descriptor is a sequence of tagged lines of key=value attributes:
//
//	common lineHeight=32 base=26 scaleW=256 scaleH=256 pages=1 packed=0
//	char id=65 x=2 y=2 width=18 height=21 xoffset=0 yoffset=5 xadvance=18 page=0 chnl=15
//	kerning first=65 second=86 amount=-2
var (
	fntLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "String", Pattern: `"[^"\n]*"`},
		{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
		{Name: "Punct", Pattern: `[=,]`},
	})

	fntParser = participle.MustBuild[fntFile](
		participle.Lexer(fntLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
)

type fntFile struct {
	Lines []*fntLine `parser:"( @@ | Newline )*"`
}

type fntLine struct {
	Pos   lexer.Position
	Tag   string     `parser:"@Ident"`
	Attrs []*fntAttr `parser:"@@*"`
}

type fntAttr struct {
	Key   string    `parser:"@Ident '='"`
	Value *fntValue `parser:"@@"`
}

type fntValue struct {
	Str  *string   `parser:"  @String"`
	Nums []float64 `parser:"| @Number ( ',' @Number )*"`
	Word *string   `parser:"| @Ident"`
}

func (l *fntLine) attr(key string) *fntValue {
	for _, a := range l.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return nil
}

func (l *fntLine) num(key string) float64 {
	if v := l.attr(key); v != nil && len(v.Nums) > 0 {
		return v.Nums[0]
	}
	return 0
}

func (l *fntLine) nums(key string) []float64 {
	if v := l.attr(key); v != nil {
		return v.Nums
	}
	return nil
}

func (l *fntLine) str(key string) string {
	v := l.attr(key)
	switch {
	case v == nil:
		return ""
	case v.Str != nil:
		return *v.Str
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

// maxPages bounds page ids; the binary format stores a glyph's page in one byte.
const maxPages = 256

// code reads a character code attribute, rejecting values that are not a valid rune.
func (l *fntLine) code(key string) (rune, error) {
	v := l.num(key)
	if v < 0 || v > unicode.MaxRune || v != float64(int64(v)) {
		return 0, fmt.Errorf("%s: %s %v is not a character code", l.Pos, key, v)
	}
	return rune(v), nil
}

// ParseText decodes a BMFont text descriptor. name is used in error positions.
func ParseText(name string, data []byte) (*Font, error) {
	ast, err := fntParser.ParseBytes(name, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	f := New(Common{})
	sawCommon := false
	for _, ln := range ast.Lines {
		switch strings.ToLower(ln.Tag) {
		case "info":
			f.Info = Info{
				Face:     ln.str("face"),
				Size:     ln.num("size"),
				Bold:     ln.num("bold") != 0,
				Italic:   ln.num("italic") != 0,
				Charset:  ln.str("charset"),
				Unicode:  ln.num("unicode") != 0,
				StretchH: ln.num("stretchH"),
				Smooth:   ln.num("smooth") != 0,
				AA:       int(ln.num("aa")),
			}
			copy(f.Info.Padding[:], ln.nums("padding"))
			copy(f.Info.Spacing[:], ln.nums("spacing"))
		case "common":
			sawCommon = true
			f.Common = Common{
				LineHeight: ln.num("lineHeight"),
				Base:       ln.num("base"),
				ScaleW:     ln.num("scaleW"),
				ScaleH:     ln.num("scaleH"),
				Pages:      int(ln.num("pages")),
				Packed:     ln.num("packed") != 0,
			}
		case "page":
			v := ln.num("id")
			if v < 0 {
				return nil, fmt.Errorf("%s: negative page id %v", ln.Pos, v)
			}
			if v >= maxPages || (sawCommon && f.Common.Pages > 0 && v >= float64(f.Common.Pages)) {
				return nil, fmt.Errorf("%s: page id %v out of range", ln.Pos, v)
			}
			id := int(v)
			for len(f.Pages) <= id {
				f.Pages = append(f.Pages, "")
			}
			f.Pages[id] = ln.str("file")
		case "char":
			if ln.attr("id") == nil {
				return nil, fmt.Errorf("%s: char without id", ln.Pos)
			}
			id, err := ln.code("id")
			if err != nil {
				return nil, err
			}
			f.AddGlyph(Glyph{
				ID:       id,
				X:        ln.num("x"),
				Y:        ln.num("y"),
				Width:    ln.num("width"),
				Height:   ln.num("height"),
				XOffset:  ln.num("xoffset"),
				YOffset:  ln.num("yoffset"),
				XAdvance: ln.num("xadvance"),
				Page:     int(ln.num("page")),
				Channel:  int(ln.num("chnl")),
			})
		case "kerning":
			first, err := ln.code("first")
			if err != nil {
				return nil, err
			}
			second, err := ln.code("second")
			if err != nil {
				return nil, err
			}
			f.SetKerning(first, second, ln.num("amount"))
		default:
			// chars/kernings count lines and unknown tags carry nothing we need
		}
	}
	if !sawCommon {
		return nil, fmt.Errorf("parse %s: %w", name, ErrNoCommon)
	}
	return f, nil
}
