/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bmfont

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed bmfont.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

type jsonFont struct {
	Pages    []string      `json:"pages"`
	Info     jsonInfo      `json:"info"`
	Common   jsonCommon    `json:"common"`
	Chars    []Glyph       `json:"chars"`
	Kernings []jsonKerning `json:"kernings"`
}

type jsonInfo struct {
	Face     string    `json:"face"`
	Size     float64   `json:"size"`
	Bold     int       `json:"bold"`
	Italic   int       `json:"italic"`
	Charset  any       `json:"charset"`
	Unicode  int       `json:"unicode"`
	StretchH float64   `json:"stretchH"`
	Smooth   int       `json:"smooth"`
	AA       int       `json:"aa"`
	Padding  []float64 `json:"padding"`
	Spacing  []float64 `json:"spacing"`
}

type jsonCommon struct {
	LineHeight float64 `json:"lineHeight"`
	Base       float64 `json:"base"`
	ScaleW     float64 `json:"scaleW"`
	ScaleH     float64 `json:"scaleH"`
	Pages      int     `json:"pages"`
	Packed     int     `json:"packed"`
}

type jsonKerning struct {
	First  rune    `json:"first"`
	Second rune    `json:"second"`
	Amount float64 `json:"amount"`
}

// SchemaError reports every violation found while validating a JSON descriptor.
type SchemaError struct {
	Name   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match the BMFont JSON schema: %s", e.Name, strings.Join(e.Issues, "; "))
}

// ParseJSON validates data against the embedded descriptor schema and decodes it.
func ParseJSON(name string, data []byte) (*Font, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if !res.Valid() {
		se := &SchemaError{Name: name}
		for _, e := range res.Errors() {
			se.Issues = append(se.Issues, e.String())
		}
		return nil, se
	}

	var jf jsonFont
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	f := New(Common{
		LineHeight: jf.Common.LineHeight,
		Base:       jf.Common.Base,
		ScaleW:     jf.Common.ScaleW,
		ScaleH:     jf.Common.ScaleH,
		Pages:      jf.Common.Pages,
		Packed:     jf.Common.Packed != 0,
	})
	f.Info = Info{
		Face:     jf.Info.Face,
		Size:     jf.Info.Size,
		Bold:     jf.Info.Bold != 0,
		Italic:   jf.Info.Italic != 0,
		Unicode:  jf.Info.Unicode != 0,
		StretchH: jf.Info.StretchH,
		Smooth:   jf.Info.Smooth != 0,
		AA:       jf.Info.AA,
	}
	// charset is a string in some generators and a list of characters in others
	switch cs := jf.Info.Charset.(type) {
	case string:
		f.Info.Charset = cs
	case []any:
		var b strings.Builder
		for _, c := range cs {
			if s, ok := c.(string); ok {
				b.WriteString(s)
			}
		}
		f.Info.Charset = b.String()
	}
	copy(f.Info.Padding[:], jf.Info.Padding)
	copy(f.Info.Spacing[:], jf.Info.Spacing)
	f.Pages = jf.Pages
	for _, g := range jf.Chars {
		f.AddGlyph(g)
	}
	for _, k := range jf.Kernings {
		f.SetKerning(k.First, k.Second, k.Amount)
	}
	return f, nil
}
