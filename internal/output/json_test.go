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

package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kraklabs/graphdemo/pkg/demo"
	"github.com/kraklabs/graphdemo/pkg/engine"
)

func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONTo(&buf, map[string]any{"dataset": "ldbc", "count": 42}); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "  \"dataset\": \"ldbc\"") {
		t.Errorf("expected 2-space indentation, got: %s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("expected trailing newline, got: %q", out)
	}
}

func TestJSONTo_Unencodable(t *testing.T) {
	var buf bytes.Buffer
	err := JSONTo(&buf, map[string]any{"bad": math.Inf(1)})
	if err == nil || !strings.Contains(err.Error(), "JSON encoding failed") {
		t.Errorf("JSONTo(+Inf) error = %v", err)
	}
}

func TestQuery(t *testing.T) {
	res := &engine.QueryResult{
		Headers: []string{"id", "score"},
		Rows:    [][]any{{int64(1), 0.5}, {int64(2), 0.25}},
	}
	q := Query(res)
	if q.Tuples != 2 {
		t.Errorf("Tuples = %d, want 2", q.Tuples)
	}

	var buf bytes.Buffer
	if err := JSONTo(&buf, q); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"headers", "rows", "tuples", "compiling_time_ms", "execution_time_ms"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, buf.String())
		}
	}
}

func TestQuery_Empty(t *testing.T) {
	for name, res := range map[string]*engine.QueryResult{"nil": nil, "no rows": {}} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := JSONTo(&buf, Query(res)); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), `"rows": []`) || !strings.Contains(buf.String(), `"headers": []`) {
				t.Errorf("empty result should encode empty arrays, got %s", buf.String())
			}
		})
	}
}

func TestStatus(t *testing.T) {
	st := Status(demo.Status{Dir: "/tmp/graphdemo/x", Initialized: true, Loaded: []demo.Dataset{demo.LDBC, demo.MNIST}, Threads: 4})
	want := StatusJSON{Dir: "/tmp/graphdemo/x", Initialized: true, Loaded: []string{"ldbc", "mnist"}, Threads: 4}
	if st.Dir != want.Dir || !st.Initialized || st.Threads != 4 || strings.Join(st.Loaded, ",") != "ldbc,mnist" {
		t.Errorf("Status() = %+v, want %+v", st, want)
	}

	empty := Status(demo.Status{})
	if empty.Loaded == nil {
		t.Error("Loaded should encode as [] not null")
	}
}

func TestRun(t *testing.T) {
	s := demo.NewSession(demo.Config{Dir: "/tmp/graphdemo/run"})
	defer func() { _ = s.Close() }()

	r := Run(demo.MSMarco, true, s, 1500*time.Microsecond, errors.New("boom"))
	if r.Dataset != "msmarco" || !r.Bench || r.Dir != "/tmp/graphdemo/run" {
		t.Errorf("unexpected run header %+v", r)
	}
	if r.Log == nil || len(r.Log) != 0 {
		t.Errorf("Log = %#v, want empty slice", r.Log)
	}
	if r.Error != "boom" {
		t.Errorf("Error = %q", r.Error)
	}
	if r.Elapsed != "2ms" {
		t.Errorf("Elapsed = %q, want 2ms", r.Elapsed)
	}
}
