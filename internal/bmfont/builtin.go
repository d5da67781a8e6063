/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bmfont

import (
	"image"

	"golang.org/x/image/font/basicfont"
)

// Builtin converts the basicfont 7x13 face into a Font. The returned atlas is the
// face's mask: a single column strip where glyph n occupies rows [n*13, (n+1)*13).
// It is handy as a default font and for deterministic tests.
func Builtin() (*Font, image.Image) {
	return fromBasicFace(basicfont.Face7x13)
}

func fromBasicFace(face *basicfont.Face) (*Font, image.Image) {
	cell := face.Ascent + face.Descent
	b := face.Mask.Bounds()
	f := New(Common{
		LineHeight: float64(face.Height),
		Base:       float64(face.Ascent),
		ScaleW:     float64(b.Dx()),
		ScaleH:     float64(b.Dy()),
		Pages:      1,
	})
	f.Info = Info{Face: "basicfont 7x13", Size: float64(face.Height), Unicode: true}
	f.Pages = []string{"builtin"}
	for _, rng := range face.Ranges {
		for r := rng.Low; r < rng.High; r++ {
			row := rng.Offset + int(r-rng.Low)
			f.AddGlyph(Glyph{
				ID:       r,
				X:        0,
				Y:        float64(row * cell),
				Width:    float64(face.Width),
				Height:   float64(cell),
				XOffset:  float64(face.Left),
				YOffset:  float64(face.Height - cell),
				XAdvance: float64(face.Advance),
			})
		}
	}
	return f, face.Mask
}
