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

// Package main implements the graphdemo CLI, a terminal front end for
// loading and benchmarking datasets on the embedded graph engine.
//
// Usage:
//
//	graphdemo shell                          Interactive session
//	graphdemo run --dataset ldbc [--bench]   Init, load and benchmark in one go
//	graphdemo query <statement> [--json]     Run one statement
//	graphdemo sessions [--json]              List session directories
//	graphdemo reset --yes                    Delete session directories
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/config"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the output switches shared by every command.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Quiet   bool
}

type command func(a *app, args []string) error

var commands = map[string]command{
	"shell":      runShell,
	"run":        runRun,
	"query":      runQuery,
	"sessions":   runSessions,
	"reset":      runReset,
	"config":     runConfig,
	"completion": runCompletion,
}

func main() {
	fs := flag.NewFlagSet("graphdemo", flag.ContinueOnError)
	fs.SetInterspersed(false)

	var globals GlobalFlags
	showVersion := fs.Bool("version", false, "Show version and exit")
	configPath := fs.String("config", "", "Path to graphdemo.yaml (default: ./graphdemo.yaml)")
	fs.BoolVar(&globals.JSON, "json", false, "Output as JSON where supported")
	fs.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress bars")
	cfgFlags := config.RegisterFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `graphdemo - graph database demo

Loads sample datasets into the embedded graph engine and benchmarks
full-text search, graph queries and vector search on them.

Usage:
  graphdemo [global options] <command> [options]

Commands:
  shell         Interactive session (init, load, bench, query)
  run           Initialize, load a dataset and optionally benchmark it
  query         Run one statement in a new or existing session
  sessions      List session directories
  reset         Delete session directories (destructive!)
  config        Print or write the effective configuration
  completion    Generate shell completion script (bash|zsh|fish)

Datasets:
  msmarco   full-text search over passages
  ldbc      social network graph queries and inserts
  lastfm    65-dimensional cosine vector search
  mnist     784-dimensional L2 vector search

Examples:
  graphdemo shell
  graphdemo run --dataset ldbc --bench
  graphdemo query "?[x] := x = 1 + 1"
  graphdemo --storage mem --threads 4 run --dataset msmarco --bench

Global Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(errors.ExitInput)
	}

	if *showVersion {
		fmt.Printf("graphdemo version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	ui.InitColors(globals.NoColor || os.Getenv("NO_COLOR") != "")
	if globals.JSON {
		globals.Quiet = true
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		fs.Usage()
		os.Exit(errors.ExitInput)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError("Cannot load configuration", err.Error(), "Fix graphdemo.yaml or the GRAPHDEMO_* variables", err), globals.JSON)
	}
	if err := cfgFlags.Apply(cfg); err != nil {
		errors.FatalError(errors.NewConfigError("Invalid option", err.Error(), "Run 'graphdemo --help' for the accepted values", err), globals.JSON)
	}

	a, err := newApp(cfg, globals, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	err = cmd(a, args[1:])
	a.close()
	errors.FatalError(err, globals.JSON)
}

// parseArgs parses command flags. ok is false when parsing failed or help
// was shown; err is nil for help.
func parseArgs(a *app, fs *flag.FlagSet, args []string) (ok bool, err error) {
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, nil
		}
		return false, errors.NewInputError("Invalid arguments", err.Error(), "Run 'graphdemo <command> --help'")
	}
	return true, nil
}
