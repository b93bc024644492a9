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
	"context"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/output"
	"github.com/kraklabs/graphdemo/pkg/demo"
)

func runRun(a *app, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	name := fs.String("dataset", "", "Dataset to load: msmarco, ldbc, lastfm or mnist")
	bench := fs.Bool("bench", false, "Run the dataset's benchmark after loading")
	timeout := fs.Duration("timeout", 0, "Give up after this long (0 = no limit)")

	fs.Usage = func() {
		fmt.Fprintf(a.stderr, `Usage: graphdemo run --dataset NAME [options]

Initializes the engine with the configured memory budget and thread count,
loads the dataset from dataset_dir and optionally benchmarks it. The
session log is printed as it is written.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(a.stderr, `
Examples:
  graphdemo run --dataset msmarco --bench
  graphdemo --dataset-dir ./data --storage mem run --dataset mnist --bench
  graphdemo --json run --dataset ldbc
`)
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}
	if *name == "" {
		return errors.NewInputError("--dataset is required", "", "One of: msmarco, ldbc, lastfm, mnist")
	}
	d, err := demo.ParseDataset(*name)
	if err != nil {
		return errors.NewInputError("Unknown dataset", err.Error(), "One of: msmarco, ldbc, lastfm, mnist")
	}

	var echo io.Writer
	if !a.globals.JSON {
		echo = entryWriter{w: a.stdout}
	}
	s, done, err := a.newSession(echo)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	runErr := runScript(ctx, s, a.settings(), d, *bench)
	a.logger.Info("run.done", "dataset", string(d), "bench", *bench, "elapsed", time.Since(start), "err", runErr)

	if a.globals.JSON {
		if err := output.JSONTo(a.stdout, output.Run(d, *bench, s, time.Since(start), runErr)); err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := done(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// runScript queues init, load and optionally bench, then waits for each in
// turn. The first failure stops the run.
func runScript(ctx context.Context, s *demo.Session, settings demo.Settings, d demo.Dataset, bench bool) error {
	steps := []func() (*demo.Task, error){
		func() (*demo.Task, error) { return s.Init(settings) },
		func() (*demo.Task, error) { return s.Load(d) },
	}
	if bench {
		steps = append(steps, func() (*demo.Task, error) { return s.Bench(d) })
	}

	for _, step := range steps {
		task, err := step()
		if err != nil {
			return err
		}
		if err := task.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
