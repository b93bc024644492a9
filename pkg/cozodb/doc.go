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

// Package cozodb provides a Go binding for CozoDB v0.7.6+.
//
// CozoDB is a Datalog-based embedded database designed for graph queries.
// graphdemo uses it as the embedded engine behind pkg/engine: relations
// play the role of node and relationship tables, and its full-text and
// HNSW indexes back the search benchmarks.
//
// # Requirements
//
// This package requires CGO, the CozoDB C library (libcozo_c) and the
// cozodb build tag:
//
//	CGO_ENABLED=1 go build -tags cozodb ./...
//
// You may need to set library paths:
//
//	export CGO_LDFLAGS="-L/path/to/libcozo_c"
//	export CGO_CFLAGS="-I/path/to/cozo_c.h"
//
// # Storage Engines
//
//   - "mem": In-memory, fast but not persisted (good for testing)
//   - "sqlite": SQLite-backed, single-file persistence
//   - "rocksdb": RocksDB-backed, best performance
//
// # Quick Start
//
//	db, err := cozodb.New("rocksdb", "/path/to/data", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	result, err := db.Run(`?[x] := x = 1 + 1`, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("1 + 1 = %v (took %.4fs)\n", result.Rows[0][0], result.Took)
//
// # Parameterized Queries
//
//	result, err := db.Run(`?[id, content] := *doc{id, content}, id == $id`,
//	    map[string]any{"id": 42})
//
// # Bulk Import and Backup
//
// ImportRelations writes whole row sets into stored relations without going
// through the query parser, and Backup/Restore copy a database to and from a
// single SQLite-format file:
//
//	err := db.ImportRelations(map[string]cozodb.NamedRows{
//	    "doc": {Headers: []string{"id", "content"}, Rows: rows},
//	})
//	err = db.Backup("/tmp/snapshot.db")
//
// Errors returned by the engine are *Error values carrying the engine's
// message.
package cozodb
