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
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphdemo/pkg/storage"
)

type fakeImport struct {
	relation string
	headers  []string
	rows     [][]any
}

// fakeBackend records every call and serves ::columns from a fixed map.
type fakeBackend struct {
	mu       sync.Mutex
	runs     []string
	reads    []string
	params   []map[string]any
	imports  []fakeImport
	columns  map[string][][]any
	result   *storage.QueryResult
	runErr   error
	snapshot []byte
	backups  int
	restored []byte
	closed   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		columns:  map[string][][]any{},
		result:   &storage.QueryResult{Headers: []string{"x"}, Rows: [][]any{{float64(1)}}, Took: 2 * time.Millisecond},
		snapshot: []byte("snapshot-bytes"),
	}
}

func (f *fakeBackend) Run(_ context.Context, script string, params map[string]any) (*storage.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, script)
	f.params = append(f.params, params)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.result, nil
}

func (f *fakeBackend) RunReadOnly(_ context.Context, script string, params map[string]any) (*storage.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rel, ok := strings.CutPrefix(script, "::columns "); ok {
		rows, found := f.columns[rel]
		if !found {
			return nil, &storage.EngineError{Message: fmt.Sprintf("Cannot find requested stored relation '%s'", rel)}
		}
		return &storage.QueryResult{Headers: []string{"column", "is_key", "index", "type", "has_default"}, Rows: rows}, nil
	}
	f.reads = append(f.reads, script)
	f.params = append(f.params, params)
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.result, nil
}

func (f *fakeBackend) Import(_ context.Context, relation string, headers []string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, fakeImport{relation, headers, rows})
	return nil
}

func (f *fakeBackend) Backup(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backups++
	return os.WriteFile(path, f.snapshot, 0600)
}

func (f *fakeBackend) Restore(_ context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restored = data
	return nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) importedRows() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows [][]any
	for _, imp := range f.imports {
		rows = append(rows, imp.rows...)
	}
	return rows
}

// setColumns registers a relation as name:type pairs.
func (f *fakeBackend) setColumns(relation string, cols ...string) {
	var rows [][]any
	for i, c := range cols {
		name, typ, _ := strings.Cut(c, ":")
		rows = append(rows, []any{name, i == 0, float64(i), typ, false})
	}
	f.columns[relation] = rows
}

func testConfig(storageEngine string) SystemConfig {
	cfg := DefaultSystemConfig()
	cfg.MaxNumThreads = 2
	cfg.Storage = storageEngine
	return cfg
}

// openFake opens a database over fb in a temporary directory.
func openFake(t *testing.T, fb *fakeBackend, cfg SystemConfig) (*Database, *Connection) {
	t.Helper()
	db, err := Open(t.TempDir(), cfg, WithBackendOpener(func(string, string) (storage.Backend, error) {
		return fb, nil
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := db.Connect()
	require.NoError(t, err)
	return db, conn
}
