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

//go:build cozodb

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

// setupTestStorage creates an in-memory EmbeddedBackend for testing.
func setupTestStorage(t *testing.T) *EmbeddedBackend {
	t.Helper()
	backend, err := NewEmbeddedBackend(EmbeddedConfig{
		DataDir: t.TempDir(),
		Engine:  "mem",
	})
	if err != nil {
		t.Fatalf("setupTestStorage failed: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestNewEmbeddedBackend_RequiresDataDir(t *testing.T) {
	_, err := NewEmbeddedBackend(EmbeddedConfig{Engine: "mem"})
	if err == nil {
		t.Fatal("expected error for empty data dir")
	}
}

func TestEmbeddedBackend_RunAndQuery(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	if _, err := backend.Run(ctx, `:create doc {id: Int => content: String}`, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := backend.Run(ctx, `?[id, content] <- [[$id, $content]] :put doc {id => content}`,
		map[string]any{"id": 1, "content": "hello"})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	result, err := backend.RunReadOnly(ctx, `?[content] := *doc{id: 1, content}`, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "hello" {
		t.Errorf("unexpected rows: %v", result.Rows)
	}
}

func TestEmbeddedBackend_ReadOnlyRejectsMutation(t *testing.T) {
	backend := setupTestStorage(t)
	_, err := backend.RunReadOnly(context.Background(), `:create doc {id: Int}`, nil)
	if err == nil {
		t.Fatal("expected mutation to fail in read-only mode")
	}
	if !IsEngineError(err) {
		t.Errorf("expected EngineError, got %T", err)
	}
}

func TestEmbeddedBackend_ImportAndBackup(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	if _, err := backend.Run(ctx, `:create tbl {id: Int => name: String}`, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	rows := [][]any{{1, "a"}, {2, "b"}, {3, "c"}}
	if err := backend.Import(ctx, "tbl", []string{"id", "name"}, rows); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	snapshot := filepath.Join(t.TempDir(), "snap.db")
	if err := backend.Backup(ctx, snapshot); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	restored := setupTestStorage(t)
	if err := restored.Restore(ctx, snapshot); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	result, err := restored.RunReadOnly(ctx, `?[count(id)] := *tbl{id}`, nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if result.Rows[0][0] != float64(3) {
		t.Errorf("expected 3 rows after restore, got %v", result.Rows[0][0])
	}
}

func TestEmbeddedBackend_ClosedOperations(t *testing.T) {
	backend := setupTestStorage(t)
	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := backend.Run(context.Background(), `?[x] := x = 1`, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestEmbeddedBackend_ContextCancelled(t *testing.T) {
	backend := setupTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := backend.RunReadOnly(ctx, `?[x] := x = 1`, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEmbeddedBackend_ConcurrentReads(t *testing.T) {
	backend := setupTestStorage(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := backend.RunReadOnly(ctx, `?[x] := x = 1 + 1`, nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent read failed: %v", err)
	}
}
