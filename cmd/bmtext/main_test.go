/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bmtext/internal/config"
	"bmtext/internal/textlayout"
	"bmtext/internal/version"
)

// runCLI runs one invocation against a private config and font index.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut, nil)
	return code, out.String(), errOut.String()
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvFontIndex, filepath.Join(dir, "fonts.db"))
	t.Setenv(config.EnvDefaultFont, "")
	t.Setenv(config.EnvWidth, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvLogFile, "")
	return dir
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "", "version")
	if code != 0 || !strings.Contains(out, version.String()) {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
}

func TestUnknownCommand(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, "", "frobnicate"); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "layout", "-mode", "bogus", "x"); code != 2 {
		t.Fatalf("expected exit 2 for bad mode, got %d", code)
	}
}

func TestLayoutJSON(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, "", "layout", "-font", "builtin", "-width", "40", "-json", "hello", "world")
	if code != 0 {
		t.Fatalf("layout failed: %d %s", code, errOut)
	}
	var res textlayout.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if res.LineCount != 2 || len(res.Glyphs) != 10 {
		t.Fatalf("unexpected layout: lines=%d glyphs=%d", res.LineCount, len(res.Glyphs))
	}
}

func TestLayoutFromStdinWithPreset(t *testing.T) {
	isolate(t)
	code, out, errOut := runCLI(t, "a b\nc", "layout", "-preset", "label", "-in", "-")
	if code != 0 {
		t.Fatalf("layout failed: %d %s", code, errOut)
	}
	if !strings.HasPrefix(out, "lines: 2") || !strings.Contains(out, `"a b"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestImportListLayoutRemove(t *testing.T) {
	isolate(t)
	src := filepath.Join("..", "..", "internal", "bmfont", "testdata", "sample.fnt")

	if code, _, errOut := runCLI(t, "", "import", src); code != 0 {
		t.Fatalf("import failed: %s", errOut)
	}
	code, out, _ := runCLI(t, "", "fonts")
	if code != 0 || !strings.Contains(out, "sample") || !strings.Contains(out, "Sample Sans") {
		t.Fatalf("fonts listing: %d\n%s", code, out)
	}

	code, out, errOut := runCLI(t, "", "layout", "-font", "sample", "-json", "AV")
	if code != 0 {
		t.Fatalf("layout with indexed font: %s", errOut)
	}
	var res textlayout.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.Glyphs) != 2 || res.Glyphs[1].Position.X != 18-2 {
		t.Fatalf("kerned layout expected, got %+v", res.Glyphs)
	}

	if code, _, _ := runCLI(t, "", "fonts", "rm", "sample"); code != 0 {
		t.Fatalf("rm failed")
	}
	if code, _, _ := runCLI(t, "", "fonts", "rm", "sample"); code != 1 {
		t.Fatalf("second rm should fail with 1")
	}
}

func TestExportCommand(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "preview.svg")
	code, _, errOut := runCLI(t, "", "export", "-font", "builtin", "-o", out, "-guides", "hi")
	if code != 0 {
		t.Fatalf("export failed: %s", errOut)
	}
	b, err := os.ReadFile(out)
	if err != nil || !bytes.Contains(b, []byte("<svg")) {
		t.Fatalf("svg not written: %v", err)
	}
	if code, _, _ := runCLI(t, "", "export", "-font", "builtin", "hi"); code != 2 {
		t.Fatalf("missing -o should be a usage error")
	}
}

func TestPresetsCommand(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "", "presets")
	if code != 0 || !strings.Contains(out, "paragraph") || !strings.Contains(out, "code") {
		t.Fatalf("presets: %d\n%s", code, out)
	}
}

func TestConfigInitWritesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")

	code, out, _ := runCLI(t, "", "config")
	if code != 0 || strings.TrimSpace(out) != path {
		t.Fatalf("config: code=%d out=%q", code, out)
	}

	if code, _, errOut := runCLI(t, "", "config", "init"); code != 0 {
		t.Fatalf("config init: code=%d err=%q", code, errOut)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Layout.Mode != "greedy" || cfg.Fonts.Default != "builtin" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if code, _, _ := runCLI(t, "", "config", "init"); code != 1 {
		t.Fatalf("second init should refuse to overwrite, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "config", "init", "-force"); code != 0 {
		t.Fatalf("init -force: %d", code)
	}
	if code, _, _ := runCLI(t, "", "config", "bogus"); code != 2 {
		t.Fatalf("expected usage error, got %d", code)
	}
}
