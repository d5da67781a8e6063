/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "sort"

// Preset is a named bundle of layout options.
type Preset struct {
	Name    string
	Options Options
}

var builtinPresets = map[string]Preset{
	// single line labels: only explicit newlines break
	"label": {
		Name:    "label",
		Options: Options{Width: Unbounded, Mode: NoWrap, Align: AlignLeft, TabSize: DefaultTabSize},
	},
	"paragraph": {
		Name:    "paragraph",
		Options: Options{Width: 320, Mode: Greedy, Align: AlignLeft, TabSize: DefaultTabSize},
	},
	"caption": {
		Name:    "caption",
		Options: Options{Width: 240, Mode: Greedy, Align: AlignCenter, TabSize: DefaultTabSize},
	},
	"code": {Name: "code", Options: Options{Width: Unbounded, Mode: Pre, Align: AlignLeft, TabSize: 2}},
}

// GetPreset returns a builtin preset by name.
func GetPreset(name string) (Preset, bool) {
	p, ok := builtinPresets[name]
	return p, ok
}

// ListPresets lists the builtin preset names in stable order.
func ListPresets() []string { return []string{"label", "paragraph", "caption", "code"} }

// PresetSheet resolves presets across scopes with precedence
// Local > Config > Builtin. Local holds per-invocation overrides, Config the
// presets read from the configuration file.
type PresetSheet struct {
	Config map[string]Preset
	Local  map[string]Preset
}

// NewPresetSheet returns a sheet with empty scopes; builtins always resolve.
func NewPresetSheet() *PresetSheet {
	return &PresetSheet{Config: map[string]Preset{}, Local: map[string]Preset{}}
}

// WithConfig returns a copy with over merged into the Config scope.
func (s *PresetSheet) WithConfig(over map[string]Preset) *PresetSheet {
	cp := s.clone()
	for k, v := range over {
		v.Name = k
		cp.Config[k] = v
	}
	return cp
}

// WithLocal returns a copy with over merged into the Local scope.
func (s *PresetSheet) WithLocal(over map[string]Preset) *PresetSheet {
	cp := s.clone()
	for k, v := range over {
		v.Name = k
		cp.Local[k] = v
	}
	return cp
}

// Resolve returns the effective preset for name.
func (s *PresetSheet) Resolve(name string) (Preset, bool) {
	if s != nil {
		if p, ok := s.Local[name]; ok {
			return p, true
		}
		if p, ok := s.Config[name]; ok {
			return p, true
		}
	}
	return GetPreset(name)
}

// Names lists every resolvable name: builtins first in their fixed order,
// then the remaining scoped names sorted.
func (s *PresetSheet) Names() []string {
	out := ListPresets()
	seen := map[string]bool{}
	for _, n := range out {
		seen[n] = true
	}
	var extra []string
	if s != nil {
		for _, m := range []map[string]Preset{s.Config, s.Local} {
			for k := range m {
				if !seen[k] {
					seen[k] = true
					extra = append(extra, k)
				}
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (s *PresetSheet) clone() *PresetSheet {
	cp := NewPresetSheet()
	if s == nil {
		return cp
	}
	for k, v := range s.Config {
		cp.Config[k] = v
	}
	for k, v := range s.Local {
		cp.Local[k] = v
	}
	return cp
}
