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
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/contract"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/ui"
	"github.com/kraklabs/graphdemo/pkg/demo"
)

const shellHelp = `Commands:
  init [bm_mb threads]   Initialize the engine (defaults from config)
  load <dataset>         Load msmarco, ldbc, lastfm or mnist
  bench <dataset>        Benchmark a loaded dataset
  query <statement>      Run one statement
  \q                     Start a multi-line statement, end it with \go
  clear                  Clear the statement buffer
  clear log              Clear the session log
  log                    Print the session log
  status                 Show the session state and available actions
  help                   Show this help
  exit                   Leave the shell
`

func runShell(a *app, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: graphdemo shell\n\nStarts an interactive session in a new session directory.\n\n%s", shellHelp)
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}

	s, done, err := a.newSession(entryWriter{w: a.stdout})
	if err != nil {
		return err
	}
	sh := newShell(a, s)
	ui.Infof("Session %s", s.Dir())
	_, _ = fmt.Fprint(a.stdout, "Type 'help' for commands.\n")

	runErr := sh.loop(a.stdin)
	if err := done(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

type shell struct {
	app     *app
	session *demo.Session
	setup   *demo.Setup
	pad     *demo.QueryPad
	out     io.Writer

	// multiline is set between \q and \go.
	multiline bool
}

func newShell(a *app, s *demo.Session) *shell {
	return &shell{
		app:     a,
		session: s,
		setup:   demo.NewSetup(s),
		pad:     demo.NewQueryPad(s),
		out:     a.stdout,
	}
}

func (sh *shell) prompt() string {
	if sh.multiline {
		return "...> "
	}
	return "graphdemo> "
}

// loop reads commands until exit or end of input.
func (sh *shell) loop(in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), contract.MaxStatementBytes()+1)
	for {
		_, _ = fmt.Fprint(sh.out, sh.prompt())
		if !sc.Scan() {
			_, _ = fmt.Fprintln(sh.out)
			return sc.Err()
		}
		if quit := sh.handle(sc.Text()); quit {
			return nil
		}
	}
}

// handle runs one input line and reports whether the shell should exit.
func (sh *shell) handle(line string) bool {
	if sh.multiline {
		switch strings.TrimSpace(line) {
		case `\go`:
			sh.multiline = false
			sh.runPad()
		default:
			sh.pad.AppendLine(line)
		}
		return false
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		_, _ = fmt.Fprint(sh.out, shellHelp)
	case "init":
		sh.init(rest)
	case "load":
		sh.dataset(rest, sh.session.Load)
	case "bench":
		sh.dataset(rest, sh.session.Bench)
	case "query":
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "query"))
		sh.pad.SetText(text)
		sh.runPad()
	case `\q`:
		sh.pad.Clear()
		sh.multiline = true
	case "clear":
		if len(rest) == 1 && rest[0] == "log" {
			sh.session.ClearLog()
			ui.Success("Log cleared")
		} else {
			sh.pad.Clear()
			ui.Success("Statement buffer cleared")
		}
	case "log":
		for _, entry := range sh.session.Log().Entries() {
			_, _ = fmt.Fprintln(sh.out, ui.Entry(entry))
		}
	case "status":
		sh.status()
	default:
		sh.report(errors.NewInputError("Unknown command: "+cmd, "", "Type 'help' for the list of commands"))
	}
	return false
}

func (sh *shell) init(args []string) {
	bm := strconv.FormatUint(sh.app.cfg.BufferPoolMB, 10)
	threads := strconv.FormatUint(sh.app.cfg.Threads, 10)
	switch len(args) {
	case 0:
	case 2:
		bm, threads = args[0], args[1]
	default:
		sh.report(errors.NewInputError("Usage: init [bm_mb threads]", "", ""))
		return
	}
	task, err := sh.setup.Submit(bm, threads)
	sh.await(task, err)
}

func (sh *shell) dataset(args []string, submit func(demo.Dataset) (*demo.Task, error)) {
	if len(args) != 1 {
		sh.report(errors.NewInputError("A dataset name is required", "", "One of: msmarco, ldbc, lastfm, mnist"))
		return
	}
	d, err := demo.ParseDataset(args[0])
	if err != nil {
		sh.report(errors.NewInputError("Unknown dataset", err.Error(), "One of: msmarco, ldbc, lastfm, mnist"))
		return
	}
	task, err := submit(d)
	sh.await(task, err)
}

func (sh *shell) runPad() {
	if r := contract.ValidateStatement(sh.pad.Text()); !r.OK {
		sh.report(errors.NewInputError("Statement too large", r.Message, "Raise GRAPHDEMO_MAX_STATEMENT_BYTES"))
		return
	}
	task, err := sh.pad.Run()
	sh.await(task, err)
}

// await waits for a submitted action. Engine failures are already in the
// log; only precondition errors are reported here.
func (sh *shell) await(task *demo.Task, err error) {
	if err != nil {
		sh.report(err)
		return
	}
	if err := task.Wait(context.Background()); err != nil && demo.IsGating(err) {
		sh.report(err)
	}
}

func (sh *shell) report(err error) {
	errors.Report(sh.app.stderr, err, false, sh.app.globals.NoColor)
}

func (sh *shell) status() {
	st := sh.session.Status()
	actions := sh.setup.Enabled()

	_, _ = fmt.Fprintf(sh.out, "%s %s\n", ui.Label("Session:"), ui.DimText(st.Dir))
	_, _ = fmt.Fprintf(sh.out, "%s %v\n", ui.Label("Initialized:"), st.Initialized)
	if st.Initialized {
		_, _ = fmt.Fprintf(sh.out, "%s %d\n", ui.Label("Threads:"), st.Threads)
	}
	loaded := make([]string, 0, len(st.Loaded))
	for _, d := range st.Loaded {
		loaded = append(loaded, string(d))
	}
	_, _ = fmt.Fprintf(sh.out, "%s %s\n", ui.Label("Loaded:"), strings.Join(loaded, ", "))
	_, _ = fmt.Fprintf(sh.out, "%s %s\n", ui.Label("Available:"), strings.Join(available(actions), " "))
	_, _ = fmt.Fprintf(sh.out, "%s %s\n", ui.Label("Log entries:"), ui.CountText(sh.session.Log().Len()))
}

// available lists the enabled actions in a stable order.
func available(a demo.Actions) []string {
	var out []string
	if a.Init {
		out = append(out, "init")
	}
	for _, d := range demo.Datasets() {
		if a.Load[d] {
			out = append(out, "load:"+string(d))
		}
	}
	for _, d := range demo.Datasets() {
		if a.Bench[d] {
			out = append(out, "bench:"+string(d))
		}
	}
	return out
}
