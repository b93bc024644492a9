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

// Package engine is the database client the demo talks to: open a database
// directory with a SystemConfig, connect, and run statements.
//
// Statements are CozoScript, run on the embedded CozoDB backend from
// pkg/storage, plus two statements the engine handles itself:
//
//	CHECKPOINT
//	COPY rel FROM 'file.csv' (file_format='csv', delim=',', header=true)
//	COPY rel FROM ('ids.npy', 'vectors.npy') BY COLUMN
//
// COPY reads the relation's columns with ::columns, converts every value to
// the declared type and imports the rows in batches sized from the buffer
// pool. Row conversion runs on up to MaxNumThreadsForExec goroutines.
//
// Prepared statements are parsed once. Execute binds a map of parameters,
// which must name exactly the $params the statement uses.
//
// Every error returned by this package is an *Error whose Kind tells
// initialization, compile, binding, runtime, read-only, closed and copy
// failures apart.
//
// # Durability
//
// rocksdb and sqlite storages commit each statement. A "mem" database
// writes a snapshot (zstd-compressed when EnableCompression is set) and a
// JSON manifest into its directory on every checkpoint, and Open restores
// it. AutoCheckpoint runs a checkpoint every CheckpointThreshold mutating
// statements and on Close.
package engine
