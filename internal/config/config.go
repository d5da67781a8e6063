/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "bmtext/internal/log"
	"bmtext/internal/textlayout"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

// LayoutConfig holds layout options in their file form. Width <= 0 means unbounded.
type LayoutConfig struct {
	Width         float64 `yaml:"width"`
	Mode          string  `yaml:"mode"`  // greedy | nowrap | pre
	Align         string  `yaml:"align"` // left | center | right
	LetterSpacing float64 `yaml:"letter_spacing"`
	TabSize       float64 `yaml:"tab_size"`
	LineHeight    float64 `yaml:"line_height"`
}

type FontsConfig struct {
	IndexPath string `yaml:"index_path"` // SQLite font index; empty means next to the config file
	Default   string `yaml:"default"`    // font name in the index, a .fnt/.json path, or "builtin"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int                     `yaml:"config_version"`
	Layout        LayoutConfig            `yaml:"layout"`
	Fonts         FontsConfig             `yaml:"fonts"`
	Logging       LoggingConfig           `yaml:"logging"`
	Presets       map[string]LayoutConfig `yaml:"presets,omitempty"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Layout:        LayoutConfig{Width: 0, Mode: "greedy", Align: "left", TabSize: textlayout.DefaultTabSize},
		Fonts:         FontsConfig{Default: "builtin"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile    = "BMT_CONFIG"
	EnvWidth         = "BMT_WIDTH"
	EnvMode          = "BMT_MODE"
	EnvAlign         = "BMT_ALIGN"
	EnvLetterSpacing = "BMT_LETTER_SPACING"
	EnvTabSize       = "BMT_TAB_SIZE"
	EnvLineHeight    = "BMT_LINE_HEIGHT"
	EnvFontIndex     = "BMT_FONT_INDEX"
	EnvDefaultFont   = "BMT_DEFAULT_FONT"
	// logging envs are shared with internal/log
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
)

// ConfigPath returns the per-user config file path. BMT_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "bmtext")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "bmtext")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "bmtext")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but the defaults plus env overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, fileErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// IndexPath resolves the font index location: the configured path, or
// fonts.db next to the config file.
func (c AppConfig) IndexPath() (string, error) {
	if p := strings.TrimSpace(c.Fonts.IndexPath); p != "" {
		return p, nil
	}
	cfgPath, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cfgPath), "fonts.db"), nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	mergeLayout(&dst.Layout, src.Layout)
	if v := strings.TrimSpace(src.Fonts.IndexPath); v != "" {
		dst.Fonts.IndexPath = v
	}
	if v := strings.TrimSpace(src.Fonts.Default); v != "" {
		dst.Fonts.Default = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if len(src.Presets) > 0 && dst.Presets == nil {
		dst.Presets = make(map[string]LayoutConfig, len(src.Presets))
	}
	for name, p := range src.Presets {
		dst.Presets[name] = p
	}
}

func mergeLayout(dst *LayoutConfig, src LayoutConfig) {
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if v := strings.TrimSpace(src.Mode); v != "" {
		dst.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Align); v != "" {
		dst.Align = strings.ToLower(v)
	}
	if src.LetterSpacing != 0 {
		dst.LetterSpacing = src.LetterSpacing
	}
	if src.TabSize != 0 {
		dst.TabSize = src.TabSize
	}
	if src.LineHeight != 0 {
		dst.LineHeight = src.LineHeight
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvWidth, &cfg.Layout.Width)
	if v := strings.TrimSpace(os.Getenv(EnvMode)); v != "" {
		cfg.Layout.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAlign)); v != "" {
		cfg.Layout.Align = strings.ToLower(v)
	}
	envFloat(EnvLetterSpacing, &cfg.Layout.LetterSpacing)
	envFloat(EnvTabSize, &cfg.Layout.TabSize)
	envFloat(EnvLineHeight, &cfg.Layout.LineHeight)
	if v := strings.TrimSpace(os.Getenv(EnvFontIndex)); v != "" {
		cfg.Fonts.IndexPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultFont)); v != "" {
		cfg.Fonts.Default = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = applog.ParseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

var envKeys = map[string]string{
	"layout.width":          EnvWidth,
	"layout.mode":           EnvMode,
	"layout.align":          EnvAlign,
	"layout.letter_spacing": EnvLetterSpacing,
	"layout.tab_size":       EnvTabSize,
	"layout.line_height":    EnvLineHeight,
	"fonts.index_path":      EnvFontIndex,
	"fonts.default":         EnvDefaultFont,
	"logging.level":         EnvLogLevel,
	"logging.format":        EnvLogFormat,
	"logging.source":        EnvLogSource,
	"logging.file":          EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	if name, ok := envKeys[key]; ok && os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// Options converts the file form into layout options.
func (l LayoutConfig) Options() (textlayout.Options, error) {
	mode, err := textlayout.ParseWrapMode(l.Mode)
	if err != nil {
		return textlayout.Options{}, err
	}
	align, err := textlayout.ParseAlignment(l.Align)
	if err != nil {
		return textlayout.Options{}, err
	}
	width := l.Width
	if width <= 0 {
		width = textlayout.Unbounded
	}
	return textlayout.Options{
		Width:         width,
		Mode:          mode,
		Align:         align,
		LetterSpacing: l.LetterSpacing,
		TabSize:       l.TabSize,
		LineHeight:    l.LineHeight,
	}, nil
}

// PresetSheet returns the builtin presets overlaid with the presets of the config file.
func (c AppConfig) PresetSheet() (*textlayout.PresetSheet, error) {
	over := make(map[string]textlayout.Preset, len(c.Presets))
	for name, lc := range c.Presets {
		opt, err := lc.Options()
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		over[name] = textlayout.Preset{Name: name, Options: opt}
	}
	return textlayout.NewPresetSheet().WithConfig(over), nil
}

// LogOptions converts the logging section for applog.Init.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
