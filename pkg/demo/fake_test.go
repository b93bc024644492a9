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
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

type openCall struct {
	path string
	cfg  engine.SystemConfig
}

// fakeConn records statements and answers every query with fixed rows.
type fakeConn struct {
	mu       sync.Mutex
	queries  []string
	prepared map[*engine.PreparedStatement]string
	executed []string
	params   []map[string]any
	failOn   map[string]error
	rows     [][]any
	threads  uint64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		prepared: make(map[*engine.PreparedStatement]string),
		failOn:   make(map[string]error),
		rows:     [][]any{{float64(42)}},
		threads:  4,
	}
}

func (f *fakeConn) failure(text string) error {
	for prefix, err := range f.failOn {
		if strings.HasPrefix(text, prefix) {
			return err
		}
	}
	return nil
}

func (f *fakeConn) Query(_ context.Context, text string) (*engine.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if err := f.failure(text); err != nil {
		return nil, err
	}
	return &engine.QueryResult{Headers: []string{"n"}, Rows: f.rows}, nil
}

func (f *fakeConn) Prepare(text string) (*engine.PreparedStatement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure(text); err != nil {
		return nil, err
	}
	ps := &engine.PreparedStatement{}
	f.prepared[ps] = text
	return ps, nil
}

func (f *fakeConn) Execute(_ context.Context, ps *engine.PreparedStatement, params map[string]any) (*engine.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, f.prepared[ps])
	f.params = append(f.params, params)
	return &engine.QueryResult{Headers: []string{"id", "distance"}, Rows: [][]any{{float64(1), 0.5}}}, nil
}

func (f *fakeConn) SetMaxNumThreadsForExec(n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads = n
}

func (f *fakeConn) MaxNumThreadsForExec() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threads
}

func (f *fakeConn) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeDB struct {
	closed bool
}

func (d *fakeDB) Close() error {
	d.closed = true
	return nil
}

// fakeEngine hands out one fakeConn and records every open.
type fakeEngine struct {
	mu      sync.Mutex
	conn    *fakeConn
	db      *fakeDB
	opens   []openCall
	openErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{conn: newFakeConn(), db: &fakeDB{}}
}

func (e *fakeEngine) open(path string, cfg engine.SystemConfig) (io.Closer, Conn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opens = append(e.opens, openCall{path, cfg})
	if e.openErr != nil {
		return nil, nil, e.openErr
	}
	return e.db, e.conn, nil
}

func (e *fakeEngine) openCalls() []openCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]openCall(nil), e.opens...)
}

func newTestSession(t *testing.T, fe *fakeEngine, datasetDir string) *Session {
	t.Helper()
	s := NewSession(Config{
		Dir:        "/tmp/graphdemo/test-session",
		DatasetDir: datasetDir,
		Storage:    engine.StorageMem,
		Opener:     fe.open,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func wait(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task %s did not finish", task.Name())
	return err
}

func initSession(t *testing.T, s *Session) {
	t.Helper()
	task, err := s.Init(Settings{BufferPoolMB: 64, Threads: 4})
	require.NoError(t, err)
	require.NoError(t, wait(t, task))
}
