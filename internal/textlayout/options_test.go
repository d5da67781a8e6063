/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWrapMode(t *testing.T) {
	for in, want := range map[string]WrapMode{"": Greedy, "greedy": Greedy, "NoWrap": NoWrap, " pre ": Pre} {
		got, err := ParseWrapMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		if in != "" && in != "NoWrap" && in != " pre " {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseWrapMode("justify")
	assert.Error(t, err)
	assert.Equal(t, "WrapMode(9)", WrapMode(9).String())
}

func TestParseAlignment(t *testing.T) {
	for _, a := range []Alignment{AlignLeft, AlignCenter, AlignRight} {
		got, err := ParseAlignment(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	got, err := ParseAlignment("centre")
	require.NoError(t, err)
	assert.Equal(t, AlignCenter, got)
	_, err = ParseAlignment("top")
	assert.Error(t, err)
}

func TestOptionsSpan(t *testing.T) {
	cases := []struct {
		opt        Options
		start, end int
	}{
		{Options{}, 0, 10},
		{Options{Start: 3, End: 5}, 3, 5},
		{Options{Start: 12}, 10, 10},
		{Options{Start: -1, End: 20}, 0, 10},
		{Options{Start: 6, End: 4}, 4, 4},
	}
	for _, c := range cases {
		s, e := c.opt.span(10)
		assert.Equal(t, c.start, s, "%+v", c.opt)
		assert.Equal(t, c.end, e, "%+v", c.opt)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, Unbounded, o.Width)
	assert.Zero(t, o.minWidth())
	assert.Equal(t, float64(DefaultTabSize), Options{}.tabSize())
	assert.Equal(t, 2.0, Options{TabSize: 2}.tabSize())
}

func TestPresets_Builtin(t *testing.T) {
	for _, name := range ListPresets() {
		p, ok := GetPreset(name)
		require.True(t, ok, name)
		assert.Equal(t, name, p.Name)
	}
	code, _ := GetPreset("code")
	assert.Equal(t, Pre, code.Options.Mode)
	_, ok := GetPreset("nope")
	assert.False(t, ok)
}

func TestPresetSheet_Precedence(t *testing.T) {
	base := NewPresetSheet()
	cfg := base.WithConfig(map[string]Preset{
		"caption": {Options: Options{Width: 100, Align: AlignRight}},
		"title":   {Options: Options{Width: 400, Align: AlignCenter}},
	})
	local := cfg.WithLocal(map[string]Preset{"title": {Options: Options{Width: 200}}})

	p, ok := cfg.Resolve("caption")
	require.True(t, ok)
	assert.Equal(t, "caption", p.Name)
	assert.Equal(t, 100.0, p.Options.Width)

	p, _ = local.Resolve("title")
	assert.Equal(t, 200.0, p.Options.Width)
	p, _ = cfg.Resolve("title")
	assert.Equal(t, 400.0, p.Options.Width)

	// builtin still visible where nothing overrides it
	p, ok = local.Resolve("label")
	require.True(t, ok)
	assert.Equal(t, NoWrap, p.Options.Mode)

	// scopes are copied, the base sheet is unchanged
	_, ok = base.Resolve("title")
	assert.False(t, ok)

	assert.Equal(t, []string{"label", "paragraph", "caption", "code", "title"}, local.Names())
}

func TestPresetSheet_Nil(t *testing.T) {
	var s *PresetSheet
	p, ok := s.Resolve("paragraph")
	require.True(t, ok)
	assert.Equal(t, 320.0, p.Options.Width)
	assert.Equal(t, ListPresets(), s.Names())
}
