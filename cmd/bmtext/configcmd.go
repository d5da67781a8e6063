/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"bmtext/internal/config"
)

// config prints the config file location, or with "init" writes the defaults there.
func (a *app) config(args []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.stdout, path)
		return nil
	}
	if args[0] != "init" {
		return usageError("usage: bmtext config [init [-force]]")
	}

	flags := flag.NewFlagSet("config init", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	force := flags.Bool("force", false, "overwrite an existing config file")
	if err := flags.Parse(args[1:]); err != nil {
		return usageError(err.Error())
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := config.Save(config.Defaults()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	a.log.Info("config written")
	fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	return nil
}
