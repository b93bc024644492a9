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

package engine

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"
)

// QueryResult is the outcome of one statement.
type QueryResult struct {
	Headers []string
	Rows    [][]any

	compileTime time.Duration
	execTime    time.Duration
}

// CompilingTime is the parse and bind time in milliseconds.
func (r *QueryResult) CompilingTime() float64 {
	return float64(r.compileTime) / float64(time.Millisecond)
}

// ExecutionTime is the engine run time in milliseconds.
func (r *QueryResult) ExecutionTime() float64 {
	return float64(r.execTime) / float64(time.Millisecond)
}

// NumTuples is the number of result rows.
func (r *QueryResult) NumTuples() int {
	return len(r.Rows)
}

// Column returns the values of the named column.
func (r *QueryResult) Column(name string) ([]any, bool) {
	idx := -1
	for i, h := range r.Headers {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, true
}

// Scores returns the ranking column of an index search: "score" for
// full-text queries, "distance" for vector queries. Non-numeric cells are
// reported as zero.
func (r *QueryResult) Scores() []float64 {
	for _, name := range []string{"score", "distance"} {
		col, ok := r.Column(name)
		if !ok {
			continue
		}
		out := make([]float64, len(col))
		for i, v := range col {
			switch n := v.(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			case int:
				out[i] = float64(n)
			}
		}
		return out
	}
	return nil
}

// String renders the result as an aligned table followed by a tuple count.
func (r *QueryResult) String() string {
	var b strings.Builder
	if len(r.Headers) > 0 {
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, strings.Join(r.Headers, "\t"))

		seps := make([]string, len(r.Headers))
		for i, h := range r.Headers {
			seps[i] = strings.Repeat("-", max(len(h), 3))
		}
		_, _ = fmt.Fprintln(w, strings.Join(seps, "\t"))

		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = formatCell(v)
			}
			_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		_ = w.Flush()
	}
	fmt.Fprintf(&b, "(%d tuples)", len(r.Rows))
	return b.String()
}

// formatCell formats a cell value for table display.
func formatCell(v any) string {
	if v == nil {
		return "null"
	}
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
