/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"bmtext/internal/bmfont"
	"bmtext/internal/export"
	"bmtext/internal/storage"
)

const builtinFont = "builtin"

// resolveFont loads a font by descriptor path, the builtin font, or a name in
// the font index, in that order. Atlas pages that cannot be read are logged
// and left out; the previews then draw glyph outlines.
func (a *app) resolveFont(name string) (*bmfont.Font, *export.Atlas, error) {
	if name == "" {
		name = a.cfg.Fonts.Default
	}
	if name == "" || name == builtinFont {
		f, page := bmfont.Builtin()
		return f, &export.Atlas{Pages: []image.Image{page}}, nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		f, err := bmfont.Load(name)
		if err != nil {
			return nil, nil, err
		}
		return f, a.atlas(f, filepath.Dir(name)), nil
	}

	ix, err := a.openIndex()
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = ix.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	f, source, err := ix.LoadFont(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f, a.atlas(f, filepath.Dir(source)), nil
}

func (a *app) atlas(f *bmfont.Font, dir string) *export.Atlas {
	pages, err := bmfont.LoadPages(f, dir)
	if err != nil {
		a.log.Warn("atlas pages unavailable", slog.String("dir", dir), slog.Any("err", err))
		return nil
	}
	return &export.Atlas{Pages: pages, Files: f.Pages}
}

func (a *app) openIndex() (*storage.Index, error) {
	path, err := a.cfg.IndexPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenIndex(path)
}

func (a *app) importFont(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	name := fs.String("name", "", "index name (default: descriptor file name without extension)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() != 1 {
		return usageError("import requires exactly one font descriptor")
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}
	f, err := bmfont.Load(path)
	if err != nil {
		return err
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		n = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if n == builtinFont {
		return usageError(fmt.Sprintf("%q is reserved", builtinFont))
	}

	ix, err := a.openIndex()
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ix.SaveFont(ctx, n, f, path); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Imported %s as %q (%d glyphs, %d kerning pairs)\n", filepath.Base(path), n, f.NumGlyphs(), f.NumKernings())
	return nil
}

func (a *app) fonts(args []string) error {
	ix, err := a.openIndex()
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(args) > 0 {
		if args[0] != "rm" || len(args) != 2 {
			return usageError("usage: bmtext fonts [rm <name>]")
		}
		if err := ix.DeleteFont(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Removed %q\n", args[1])
		return nil
	}

	list, err := ix.ListFonts(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFACE\tSIZE\tLINE\tGLYPHS\tKERNINGS\tSOURCE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%d\t%d\t%s\n", s.Name, s.Face, s.Size, s.LineHeight, s.Glyphs, s.Kernings, s.Source)
	}
	return tw.Flush()
}
