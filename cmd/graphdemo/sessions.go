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
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/bootstrap"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/output"
	"github.com/kraklabs/graphdemo/internal/ui"
)

func runSessions(a *app, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", a.globals.JSON, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: graphdemo sessions [--json]\n\nLists session directories under %s, newest first.\n\nOptions:\n", bootstrap.Root(a.cfg.TempDir))
		fs.PrintDefaults()
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}

	sessions, err := bootstrap.ListSessions(a.cfg.TempDir)
	if err != nil {
		return err
	}

	if *jsonOutput {
		list := make([]output.SessionJSON, 0, len(sessions))
		for _, s := range sessions {
			list = append(list, output.SessionJSON{ID: s.ID, Path: s.Path, Size: s.Size, Modified: s.Modified})
		}
		return output.JSONTo(a.stdout, list)
	}

	if len(sessions) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "No sessions in %s\n", bootstrap.Root(a.cfg.TempDir))
		return nil
	}
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSIZE\tMODIFIED")
	for _, s := range sessions {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, formatSize(s.Size), s.Modified.Format(time.DateTime))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "%s sessions\n", ui.CountText(len(sessions)))
	return nil
}

func runReset(a *app, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")
	sessionID := fs.String("session", "", "Delete only this session")

	fs.Usage = func() {
		fmt.Fprintf(a.stderr, `Usage: graphdemo reset --yes [options]

Deletes session directories under the graphdemo temp root.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}
	if !*confirm {
		return errors.NewInputError("You must pass --yes to confirm the reset", "This deletes session databases", "graphdemo reset --yes")
	}

	if *sessionID != "" {
		if err := bootstrap.RemoveSession(a.cfg.TempDir, *sessionID, a.logger); err != nil {
			return err
		}
		ui.Successf("Deleted session %s", *sessionID)
		return nil
	}

	n, err := bootstrap.RemoveAll(a.cfg.TempDir, a.logger)
	if err != nil {
		return err
	}
	ui.Successf("Deleted %d sessions from %s", n, bootstrap.Root(a.cfg.TempDir))
	return nil
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
