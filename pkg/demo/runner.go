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

package demo

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

// runner runs the statements of one action and reports them to the log.
type runner struct {
	conn       Conn
	log        *Log
	logger     *slog.Logger
	datasetDir string
	progress   ProgressFunc
}

// path resolves a dataset file name.
func (r *runner) path(name string) string {
	return filepath.Join(r.datasetDir, name)
}

// exec logs the statement, runs it and logs the result with its timing as
// a single entry.
func (r *runner) exec(ctx context.Context, text string) (*engine.QueryResult, error) {
	r.log.Appendf("Executing query: %s", text)
	res, err := r.conn.Query(ctx, text)
	if err != nil {
		return nil, err
	}
	r.log.Append(resultEntry(res))
	return res, nil
}

// query runs a statement without logging it.
func (r *runner) query(ctx context.Context, text string) (*engine.QueryResult, error) {
	return r.conn.Query(ctx, text)
}

// prepare logs and prepares a statement.
func (r *runner) prepare(text string) (*engine.PreparedStatement, error) {
	r.log.Appendf("Preparing query: %s", text)
	return r.conn.Prepare(text)
}

// checkpoint issues CHECKPOINT and logs its duration.
func (r *runner) checkpoint(ctx context.Context) error {
	r.log.Append("CHECKPOINT")
	res, err := r.conn.Query(ctx, "CHECKPOINT")
	if err != nil {
		return err
	}
	r.log.Append(resultEntry(res))
	return nil
}

// resultEntry renders a result, its execution time and the separator.
func resultEntry(res *engine.QueryResult) string {
	var b strings.Builder
	b.WriteString(res.String())
	b.WriteString("\n")
	b.WriteString(executionTime(res.ExecutionTime()))
	b.WriteString("\n")
	b.WriteString(Separator)
	return b.String()
}

func executionTime(ms float64) string {
	return fmt.Sprintf("Execution time: %s", formatMillis(ms))
}

func formatMillis(ms float64) string {
	return fmt.Sprintf("%.3f ms", ms)
}

// ProgressFunc starts reporting a loop of total steps.
type ProgressFunc func(label string, total int) Progress

// Progress receives loop progress.
type Progress interface {
	Add(n int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Add(int) {}
func (nopProgress) Finish() {}

func noProgress(string, int) Progress { return nopProgress{} }
