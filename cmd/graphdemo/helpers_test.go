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
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"github.com/kraklabs/graphdemo/internal/config"
	"github.com/kraklabs/graphdemo/pkg/demo"
	"github.com/kraklabs/graphdemo/pkg/engine"
)

// stubConn answers every statement with a single row.
type stubConn struct {
	mu      sync.Mutex
	queries []string
	threads uint64
}

func (c *stubConn) Query(_ context.Context, text string) (*engine.QueryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, text)
	if strings.HasPrefix(text, "FAIL") {
		return nil, &engine.Error{Kind: engine.KindRuntime, Message: "relation not found"}
	}
	return &engine.QueryResult{Headers: []string{"x"}, Rows: [][]any{{int64(2)}}}, nil
}

func (c *stubConn) Prepare(string) (*engine.PreparedStatement, error) {
	return &engine.PreparedStatement{}, nil
}

func (c *stubConn) Execute(context.Context, *engine.PreparedStatement, map[string]any) (*engine.QueryResult, error) {
	return &engine.QueryResult{Headers: []string{"id"}, Rows: [][]any{{int64(1)}}}, nil
}

func (c *stubConn) SetMaxNumThreadsForExec(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads = n
}

func (c *stubConn) MaxNumThreadsForExec() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threads
}

func (c *stubConn) statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

type stubDB struct{}

func (stubDB) Close() error { return nil }

type testApp struct {
	*app
	conn   *stubConn
	opens  []engine.SystemConfig
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestApp builds an app over a stub engine with colors off and sessions
// under a temporary directory.
func newTestApp(t *testing.T, stdin string) *testApp {
	t.Helper()
	origNoColor, origOut := color.NoColor, color.Output
	color.NoColor = true
	color.Output = io.Discard
	t.Cleanup(func() {
		color.NoColor = origNoColor
		color.Output = origOut
	})

	cfg := config.Default()
	cfg.TempDir = t.TempDir()
	cfg.DatasetDir = t.TempDir()
	cfg.Storage = engine.StorageMem
	cfg.BufferPoolMB = 64
	cfg.Threads = 2

	ta := &testApp{
		conn:   &stubConn{threads: 2},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.app = &app{
		cfg:     cfg,
		globals: GlobalFlags{NoColor: true, Quiet: true},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdin:   strings.NewReader(stdin),
		stdout:  ta.stdout,
		stderr:  ta.stderr,
	}
	var mu sync.Mutex
	ta.opener = func(_ string, sc engine.SystemConfig) (io.Closer, demo.Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		ta.opens = append(ta.opens, sc)
		return stubDB{}, ta.conn, nil
	}
	return ta
}
