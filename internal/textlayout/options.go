/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"math"
	"strings"
)

// Unbounded is the Width that disables width-based wrapping.
var Unbounded = math.Inf(1)

// DefaultTabSize is the tab width, in space advances, used when Options.TabSize is zero.
const DefaultTabSize = 4

// WrapMode selects how lines are broken.
type WrapMode int

const (
	// Greedy wraps at whitespace so that lines fit Width; '\n' always breaks.
	Greedy WrapMode = iota
	// NoWrap ignores Width; only '\n' breaks.
	NoWrap
	// Pre keeps every character, breaks only at '\n' and clips each line to Width.
	Pre
)

func (m WrapMode) String() string {
	switch m {
	case Greedy:
		return "greedy"
	case NoWrap:
		return "nowrap"
	case Pre:
		return "pre"
	}
	return fmt.Sprintf("WrapMode(%d)", int(m))
}

// ParseWrapMode accepts "greedy" (or ""), "nowrap" and "pre".
func ParseWrapMode(s string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "greedy", "normal", "wrap":
		return Greedy, nil
	case "nowrap", "no-wrap":
		return NoWrap, nil
	case "pre":
		return Pre, nil
	}
	return Greedy, fmt.Errorf("unknown wrap mode %q", s)
}

// Alignment is the horizontal placement of each line within the block.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// ParseAlignment accepts "left" (or ""), "center" and "right".
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Options configures one layout run.
//
// Width is not special-cased: zero or negative widths wrap as much as possible.
// Use Unbounded (the DefaultOptions value) for no width limit.
type Options struct {
	Width         float64
	Start         int // first rune index laid out
	End           int // exclusive rune index; <= 0 or past the text means the text length
	Mode          WrapMode
	Align         Alignment
	LetterSpacing float64
	TabSize       float64 // tab advance in space advances; 0 means DefaultTabSize
	LineHeight    float64 // 0 means the font's line height
}

// DefaultOptions returns unbounded, left-aligned greedy wrapping.
func DefaultOptions() Options {
	return Options{Width: Unbounded, Mode: Greedy, Align: AlignLeft, TabSize: DefaultTabSize}
}

func (o Options) tabSize() float64 {
	if o.TabSize == 0 {
		return DefaultTabSize
	}
	return o.TabSize
}

// span clamps Start/End to the text.
func (o Options) span(n int) (start, end int) {
	start, end = max(o.Start, 0), o.End
	if end <= 0 || end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

// minWidth is the block width floor used for alignment.
func (o Options) minWidth() float64 {
	if math.IsInf(o.Width, 0) || math.IsNaN(o.Width) {
		return 0
	}
	return o.Width
}
