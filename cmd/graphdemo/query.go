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
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/bootstrap"
	"github.com/kraklabs/graphdemo/internal/contract"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/output"
	"github.com/kraklabs/graphdemo/pkg/engine"
)

func runQuery(a *app, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", a.globals.JSON, "Output as JSON")
	sessionID := fs.String("session", "", "Run against an existing session directory (see 'graphdemo sessions')")
	readOnly := fs.Bool("read-only", false, "Open the session read-only")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")

	fs.Usage = func() {
		fmt.Fprintf(a.stderr, `Usage: graphdemo query [options] <statement>

Runs one statement. Without --session the statement runs in a new, empty
session directory.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(a.stderr, `
Examples:
  graphdemo query "?[x] := x = 1 + 1"
  graphdemo query --session 3f1c... "?[count(id)] := *comment{id}"
  graphdemo query --session 3f1c... --read-only --json "::relations"
`)
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}
	if fs.NArg() == 0 {
		return errors.NewInputError("Statement argument required", "", `Example: graphdemo query "?[x] := x = 1"`)
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if r := contract.ValidateStatement(text); !r.OK {
		return errors.NewInputError("Statement too large", r.Message, "Raise GRAPHDEMO_MAX_STATEMENT_BYTES")
	}

	dir, cleanup, err := a.queryDir(*sessionID)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := engine.DefaultSystemConfig()
	cfg.BufferPoolSize = a.cfg.BufferPoolMB * 1_048_576
	cfg.MaxNumThreads = a.cfg.Threads
	cfg.Storage = a.cfg.Storage
	cfg.ReadOnly = *readOnly

	db, err := engine.Open(dir, cfg, engine.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.logger.Warn("query.close.failed", "dir", dir, "err", err)
		}
	}()
	conn, err := db.Connect()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	res, err := conn.Query(ctx, text)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return output.JSONTo(a.stdout, output.Query(res))
	}
	_, _ = fmt.Fprintln(a.stdout, res.String())
	_, _ = fmt.Fprintf(a.stdout, "Compiling time: %.3f ms\nExecution time: %.3f ms\n", res.CompilingTime(), res.ExecutionTime())
	return nil
}

// queryDir resolves the database directory for a one-shot query. A new
// directory is removed afterwards when cleanup_on_exit is set.
func (a *app) queryDir(sessionID string) (string, func(), error) {
	if sessionID != "" {
		dir := filepath.Join(bootstrap.Root(a.cfg.TempDir), sessionID)
		if _, err := os.Stat(dir); err != nil {
			return "", nil, errors.NewNotFoundError("Session not found", dir, "List sessions with 'graphdemo sessions'")
		}
		return dir, func() {}, nil
	}

	dir, err := bootstrap.NewSessionDir(a.cfg.TempDir, a.logger)
	if err != nil {
		return "", nil, errors.NewPermissionError("Cannot create session directory", err.Error(), "Check temp_dir or pass --temp-dir", err)
	}
	cleanup := func() {
		if !a.cfg.CleanupOnExit {
			return
		}
		if err := bootstrap.RemoveSession(a.cfg.TempDir, filepath.Base(dir), a.logger); err != nil {
			a.logger.Warn("query.cleanup.failed", "dir", dir, "err", err)
		}
	}
	return dir, cleanup, nil
}
