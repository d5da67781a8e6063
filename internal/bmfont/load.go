/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bmfont

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "bmtext/internal/log"
)

var (
	// ErrUnknownFormat is returned when a descriptor is neither text nor JSON.
	ErrUnknownFormat = errors.New("unknown bitmap font format")
	// ErrNoCommon is returned by ParseText when the "common" line is missing.
	ErrNoCommon = errors.New("missing common line metrics")
	// ErrNoGlyphs is returned by Load when a descriptor defines no glyphs.
	ErrNoGlyphs = errors.New("font defines no glyphs")
)

// Format names a descriptor encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// DetectFormat guesses the descriptor encoding from the file extension, then from content.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".fnt", ".txt":
		if !bytes.HasPrefix(data, []byte("BMF")) && !looksXML(data) {
			return FormatText, nil
		}
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON, nil
	case bytes.HasPrefix(trimmed, []byte("info")), bytes.HasPrefix(trimmed, []byte("common")):
		return FormatText, nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrUnknownFormat)
}

func looksXML(data []byte) bool {
	t := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return bytes.HasPrefix(t, []byte("<"))
}

// Decode parses data in whichever supported format it is in.
func Decode(name string, data []byte) (*Font, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}
	var f *Font
	switch format {
	case FormatJSON:
		f, err = ParseJSON(name, data)
	default:
		f, err = ParseText(name, data)
	}
	if err != nil {
		return nil, err
	}
	if !f.HasGlyphs() {
		return nil, fmt.Errorf("%s: %w", name, ErrNoGlyphs)
	}
	return f, nil
}

// Load reads and decodes the descriptor at path.
func Load(path string) (*Font, error) {
	l := applog.WithOperation(applog.WithComponent("bmfont"), "load").With(slog.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := Decode(filepath.Base(path), data)
	if err != nil {
		l.Error("decode failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("font loaded",
		slog.String("face", f.Info.Face),
		slog.Int("glyphs", f.NumGlyphs()),
		slog.Int("kernings", f.NumKernings()),
	)
	return f, nil
}

// LoadPages decodes the atlas page images referenced by f, resolved relative to dir.
// Missing or undecodable pages are reported as an error naming the page.
func LoadPages(f *Font, dir string) ([]image.Image, error) {
	if f == nil {
		return nil, nil
	}
	pages := make([]image.Image, len(f.Pages))
	for i, name := range f.Pages {
		if name == "" {
			continue
		}
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		img, err := decodeImage(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i] = img
	}
	return pages, nil
}

func decodeImage(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
