// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/config"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/ui"
)

// runConfig prints the effective configuration, or writes it to a file so
// it can be edited and passed back with --config.
func runConfig(a *app, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	write := fs.String("write", "", "Write the configuration to this path instead of printing it")
	force := fs.Bool("force", false, "Overwrite an existing file")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, `Usage: graphdemo config [--write PATH [--force]]

Prints the configuration after defaults, %s, GRAPHDEMO_* variables and
flags have been applied.

Options:
`, config.DefaultFile)
		fs.PrintDefaults()
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}

	if *write == "" {
		data, err := config.Marshal(a.cfg)
		if err != nil {
			return errors.NewInternalError("Cannot encode configuration", err.Error(), "", err)
		}
		_, err = a.stdout.Write(data)
		return err
	}

	if _, err := os.Stat(*write); err == nil && !*force {
		return errors.NewInputError(
			fmt.Sprintf("%s already exists", *write),
			"Refusing to overwrite an existing configuration file",
			"Pass --force to overwrite it",
		)
	}
	if err := config.Save(a.cfg, *write); err != nil {
		return errors.NewConfigError("Cannot write configuration", err.Error(), "Check that the directory is writable", err)
	}
	ui.Successf("Configuration written to %s", *write)
	return nil
}
