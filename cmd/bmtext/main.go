/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"bmtext/internal/config"
	"bmtext/internal/crash"
	applog "bmtext/internal/log"
	"bmtext/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "bmtext: bitmap-font text layout")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bmtext version|-v|--version              Show version")
	fmt.Fprintln(w, "  bmtext layout [flags] [text]             Lay out text and print lines (or -json)")
	fmt.Fprintln(w, "  bmtext export -o <file> [flags] [text]   Render a PNG, SVG or PDF preview")
	fmt.Fprintln(w, "  bmtext import [-name N] <font.fnt|json>  Add a font to the font index")
	fmt.Fprintln(w, "  bmtext fonts [rm <name>]                 List or remove indexed fonts")
	fmt.Fprintln(w, "  bmtext presets                           List layout presets")
	fmt.Fprintln(w, "  bmtext config [init [-force]]            Show the config path or write defaults")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fonts are given as a descriptor path, an indexed font name, or \"builtin\".")
}

func main() {
	info := &crash.Info{}
	defer crash.Recover(info)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, info))
}

// run executes one CLI invocation and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, info *crash.Info) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Warning:", err)
	}
	applog.Init(cfg.LogOptions())
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	if info != nil {
		info.Command = args[0]
	}
	a := &app{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr, log: l, crash: info}

	var cmdErr error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "layout":
		cmdErr = a.layout(args[1:])
	case "export":
		cmdErr = a.export(args[1:])
	case "import":
		cmdErr = a.importFont(args[1:])
	case "fonts":
		cmdErr = a.fonts(args[1:])
	case "presets":
		cmdErr = a.presets(args[1:])
	case "config":
		cmdErr = a.config(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	if cmdErr != nil {
		if ue, ok := cmdErr.(usageError); ok {
			fmt.Fprintln(stderr, ue.Error())
			return 2
		}
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", cmdErr))
		fmt.Fprintln(stderr, "Error:", cmdErr)
		return 1
	}
	return 0
}

// app carries what every command needs.
type app struct {
	cfg    config.AppConfig
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	crash  *crash.Info
}

// usageError marks bad invocations, which exit with code 2.
type usageError string

func (e usageError) Error() string { return string(e) }
