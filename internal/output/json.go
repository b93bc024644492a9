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

// Package output renders graphdemo command results as JSON for --json.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kraklabs/graphdemo/pkg/demo"
	"github.com/kraklabs/graphdemo/pkg/engine"
)

// JSON writes data to stdout as indented JSON.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data to w as indented JSON followed by a newline.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// QueryJSON is the --json form of a statement result.
type QueryJSON struct {
	Headers       []string `json:"headers"`
	Rows          [][]any  `json:"rows"`
	Tuples        int      `json:"tuples"`
	CompilingTime float64  `json:"compiling_time_ms"`
	ExecutionTime float64  `json:"execution_time_ms"`
}

// Query converts a result. A nil result gives an empty one.
func Query(res *engine.QueryResult) QueryJSON {
	if res == nil {
		return QueryJSON{Headers: []string{}, Rows: [][]any{}}
	}
	q := QueryJSON{
		Headers:       res.Headers,
		Rows:          res.Rows,
		Tuples:        res.NumTuples(),
		CompilingTime: res.CompilingTime(),
		ExecutionTime: res.ExecutionTime(),
	}
	if q.Headers == nil {
		q.Headers = []string{}
	}
	if q.Rows == nil {
		q.Rows = [][]any{}
	}
	return q
}

// StatusJSON is the --json form of a session status.
type StatusJSON struct {
	Dir         string   `json:"dir"`
	Initialized bool     `json:"initialized"`
	Loaded      []string `json:"loaded"`
	Threads     uint64   `json:"threads,omitempty"`
}

func Status(st demo.Status) StatusJSON {
	loaded := make([]string, 0, len(st.Loaded))
	for _, d := range st.Loaded {
		loaded = append(loaded, string(d))
	}
	return StatusJSON{Dir: st.Dir, Initialized: st.Initialized, Loaded: loaded, Threads: st.Threads}
}

// RunJSON is the --json form of a scripted run: the session log and the
// outcome.
type RunJSON struct {
	Dataset string   `json:"dataset"`
	Bench   bool     `json:"bench"`
	Dir     string   `json:"dir"`
	Log     []string `json:"log"`
	Error   string   `json:"error,omitempty"`
	Elapsed string   `json:"elapsed"`
}

func Run(d demo.Dataset, bench bool, s *demo.Session, elapsed time.Duration, err error) RunJSON {
	r := RunJSON{
		Dataset: string(d),
		Bench:   bench,
		Dir:     s.Dir(),
		Log:     s.Log().Entries(),
		Elapsed: elapsed.Round(time.Millisecond).String(),
	}
	if r.Log == nil {
		r.Log = []string{}
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// SessionJSON describes one session directory on disk.
type SessionJSON struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Size     int64     `json:"size_bytes"`
	Modified time.Time `json:"modified"`
}
