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

package testing

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

// SetupTestDB opens an engine database in a temporary directory and returns
// it with one connection. The database is closed when the test finishes.
//
// This helper:
//   - Creates a temporary directory
//   - Opens the database with a small buffer pool and two threads
//   - Registers cleanup to close the database
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    db, conn := testing.SetupTestDB(t, engine.StorageMem)
//
//	    testing.CreateTestDocs(t, conn, map[int64]string{1: "hello"})
//
//	    // Run your tests...
//	}
func SetupTestDB(t *testing.T, storageEngine string) (*engine.Database, *engine.Connection) {
	t.Helper()
	return OpenTestDB(t, t.TempDir(), storageEngine)
}

// OpenTestDB opens the database at dir. Use it to reopen a directory written
// by an earlier SetupTestDB.
func OpenTestDB(t *testing.T, dir, storageEngine string) (*engine.Database, *engine.Connection) {
	t.Helper()

	cfg := engine.DefaultSystemConfig()
	cfg.BufferPoolSize = 16 << 20
	cfg.MaxNumThreads = 2
	cfg.Storage = storageEngine

	db, err := engine.Open(dir, cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	conn, err := db.Connect()
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	return db, conn
}

// MustQuery runs a statement and fails the test on error.
func MustQuery(t *testing.T, conn *engine.Connection, statement string) *engine.QueryResult {
	t.Helper()

	result, err := conn.Query(context.Background(), statement)
	if err != nil {
		t.Fatalf("query %q failed: %v", statement, err)
	}
	return result
}

// CreateTestDocs creates the doc relation used by the full-text dataset and
// inserts docs into it.
//
// Example:
//
//	testing.CreateTestDocs(t, conn, map[int64]string{1: "define extreme"})
func CreateTestDocs(t *testing.T, conn *engine.Connection, docs map[int64]string) {
	t.Helper()

	MustQuery(t, conn, ":create doc {id: Int => content: String}")
	if len(docs) == 0 {
		return
	}

	ps, err := conn.Prepare("?[id, content] <- [[$id, $content]] :put doc {id => content}")
	if err != nil {
		t.Fatalf("failed to prepare doc insert: %v", err)
	}
	for id, content := range docs {
		if _, err := conn.Execute(context.Background(), ps, map[string]any{"id": id, "content": content}); err != nil {
			t.Fatalf("failed to insert doc %d: %v", id, err)
		}
	}
}

// CreateTestVectors creates tbl {id: Int => vec: <F32; dim>} and fills it
// with n vectors whose components all equal the row id.
func CreateTestVectors(t *testing.T, conn *engine.Connection, dim, n int) {
	t.Helper()

	MustQuery(t, conn, fmt.Sprintf(":create tbl {id: Int => vec: <F32; %d>}", dim))

	var rows []string
	for i := 0; i < n; i++ {
		comps := make([]string, dim)
		for j := range comps {
			comps[j] = fmt.Sprintf("%d.0", i+1)
		}
		rows = append(rows, fmt.Sprintf("[%d, vec([%s])]", i, strings.Join(comps, ", ")))
	}
	if len(rows) > 0 {
		MustQuery(t, conn, fmt.Sprintf("?[id, vec] <- [%s] :put tbl {id => vec}", strings.Join(rows, ", ")))
	}
}

// QueryIDs returns the sorted ids stored in relation.
//
// Example:
//
//	ids := testing.QueryIDs(t, conn, "doc")
//	require.Equal(t, []int64{1, 2}, ids)
func QueryIDs(t *testing.T, conn *engine.Connection, relation string) []int64 {
	t.Helper()

	result := MustQuery(t, conn, fmt.Sprintf("?[id] := *%s{id} :order id", relation))
	ids := make([]int64, 0, len(result.Rows))
	for _, row := range result.Rows {
		switch v := row[0].(type) {
		case float64:
			ids = append(ids, int64(v))
		case int64:
			ids = append(ids, v)
		default:
			t.Fatalf("unexpected id type %T", row[0])
		}
	}
	return ids
}
