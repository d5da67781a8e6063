/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bmtext/internal/export"
	"bmtext/internal/textlayout"
)

// layoutFlags are shared by layout and export.
type layoutFlags struct {
	font          string
	preset        string
	in            string
	width         float64
	mode          string
	align         string
	letterSpacing float64
	tabSize       float64
	lineHeight    float64
	start, end    int
}

func (lf *layoutFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&lf.font, "font", "", "font: descriptor path, indexed name or \"builtin\" (default from config)")
	fs.StringVar(&lf.preset, "preset", "", "layout preset (see `bmtext presets`)")
	fs.StringVar(&lf.in, "in", "", "read text from file (\"-\" for stdin) instead of arguments")
	fs.Float64Var(&lf.width, "width", 0, "wrap width; <= 0 means unbounded")
	fs.StringVar(&lf.mode, "mode", "", "wrap mode: greedy, nowrap or pre")
	fs.StringVar(&lf.align, "align", "", "alignment: left, center or right")
	fs.Float64Var(&lf.letterSpacing, "letter-spacing", 0, "extra advance after every glyph")
	fs.Float64Var(&lf.tabSize, "tab-size", 0, "tab width in spaces")
	fs.Float64Var(&lf.lineHeight, "line-height", 0, "line height override")
	fs.IntVar(&lf.start, "start", 0, "first rune index")
	fs.IntVar(&lf.end, "end", 0, "end rune index (exclusive); 0 means end of text")
}

// options resolves the effective layout options: config defaults, then the
// preset, then any flag given explicitly.
func (a *app) options(fs *flag.FlagSet, lf *layoutFlags) (textlayout.Options, error) {
	opt, err := a.cfg.Layout.Options()
	if err != nil {
		return opt, fmt.Errorf("config layout: %w", err)
	}
	if lf.preset != "" {
		sheet, err := a.cfg.PresetSheet()
		if err != nil {
			return opt, err
		}
		p, ok := sheet.Resolve(lf.preset)
		if !ok {
			return opt, usageError(fmt.Sprintf("unknown preset %q", lf.preset))
		}
		opt = p.Options
	}

	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			opt.Width = lf.width
			if lf.width <= 0 {
				opt.Width = textlayout.Unbounded
			}
		case "mode":
			m, err := textlayout.ParseWrapMode(lf.mode)
			if err != nil {
				perr = err
			}
			opt.Mode = m
		case "align":
			al, err := textlayout.ParseAlignment(lf.align)
			if err != nil {
				perr = err
			}
			opt.Align = al
		case "letter-spacing":
			opt.LetterSpacing = lf.letterSpacing
		case "tab-size":
			opt.TabSize = lf.tabSize
		case "line-height":
			opt.LineHeight = lf.lineHeight
		}
	})
	if perr != nil {
		return opt, usageError(perr.Error())
	}
	opt.Start, opt.End = lf.start, lf.end
	return opt, nil
}

// text returns the input text from -in or the remaining arguments.
func (a *app) text(lf *layoutFlags, rest []string) (string, error) {
	switch lf.in {
	case "":
		return strings.Join(rest, " "), nil
	case "-":
		b, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(lf.in)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(b), nil
	}
}

// laidOut is the outcome of the shared layout step.
type laidOut struct {
	text  string
	res   textlayout.Result
	atlas *export.Atlas
}

// prepare parses the shared flags, loads the font and lays out the text.
func (a *app) prepare(fs *flag.FlagSet, lf *layoutFlags, args []string) (laidOut, error) {
	if err := fs.Parse(args); err != nil {
		return laidOut{}, usageError(err.Error())
	}
	opt, err := a.options(fs, lf)
	if err != nil {
		return laidOut{}, err
	}
	text, err := a.text(lf, fs.Args())
	if err != nil {
		return laidOut{}, err
	}
	if a.crash != nil {
		a.crash.Font, a.crash.Input = lf.font, text
	}
	font, atlas, err := a.resolveFont(lf.font)
	if err != nil {
		return laidOut{}, err
	}
	eng := textlayout.NewEngine(font, textlayout.WithLogger(a.log.With(slog.String("component", "textlayout"))))
	return laidOut{text: text, res: eng.Layout(text, opt), atlas: atlas}, nil
}

func (a *app) layout(args []string) error {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var lf layoutFlags
	lf.register(fs)
	asJSON := fs.Bool("json", false, "print the full layout result as JSON")

	lo, err := a.prepare(fs, &lf, args)
	if err != nil {
		return err
	}
	res := lo.res
	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	runes := []rune(lo.text)
	fmt.Fprintf(a.stdout, "lines: %d  glyphs: %d  width: %g  height: %g\n", res.LineCount, len(res.Glyphs), res.Width, res.Height)
	for i, ln := range res.Lines {
		fmt.Fprintf(a.stdout, "%3d [%d,%d) w=%-8g %q\n", i, ln.Start, ln.End, ln.Width, string(runes[ln.Start:ln.End]))
	}
	return nil
}

func (a *app) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var lf layoutFlags
	lf.register(fs)
	out := fs.String("o", "", "output file (.png, .svg or .pdf)")
	scale := fs.Float64("scale", 1, "output units per layout unit")
	margin := fs.Float64("margin", 4, "margin around the block in layout units")
	guides := fs.Bool("guides", false, "draw the block box and baselines")

	lo, err := a.prepare(fs, &lf, args)
	if err != nil {
		return err
	}
	if *out == "" {
		return usageError("export requires -o <file>")
	}
	opt := export.Options{Scale: *scale, Margin: *margin, Guides: *guides}
	if err := export.WriteFile(*out, lo.res, lo.atlas, opt); err != nil {
		return err
	}
	a.log.Info("exported", slog.String("path", *out), slog.Int("glyphs", len(lo.res.Glyphs)))
	fmt.Fprintln(a.stdout, "Wrote", *out)
	return nil
}

func (a *app) presets(args []string) error {
	if len(args) > 0 {
		return usageError("presets takes no arguments")
	}
	sheet, err := a.cfg.PresetSheet()
	if err != nil {
		return err
	}
	for _, name := range sheet.Names() {
		p, _ := sheet.Resolve(name)
		o := p.Options
		fmt.Fprintf(a.stdout, "%-12s width=%g mode=%s align=%s tab=%g\n", name, o.Width, o.Mode, o.Align, o.TabSize)
	}
	return nil
}
