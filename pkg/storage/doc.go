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

// Package storage provides the storage backend abstraction for graphdemo.
//
// The engine layer (pkg/engine) never talks to CozoDB directly. It runs
// scripts, bulk imports and snapshots through the Backend interface, which
// keeps the cgo binding out of every package above this one and lets tests
// substitute an in-process fake.
//
// # Available Backends
//
//   - EmbeddedBackend: local CozoDB instance (requires the cozodb build tag)
//
// Without the cozodb tag NewEmbeddedBackend returns ErrUnavailable.
//
// # Quick Start
//
//	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
//	    DataDir: "/tmp/graphdemo/3b1f...",
//	    Engine:  "rocksdb",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	result, err := backend.RunReadOnly(ctx, `?[count(id)] := *doc{id}`, nil)
//
// # Run vs RunReadOnly
//
// Run takes an exclusive lock and may mutate; RunReadOnly takes a shared lock
// and sets the engine's immutable flag, so a mutation inside it fails instead
// of silently writing.
//
// # Errors
//
// Failures reported by the engine itself are returned as *EngineError so the
// layers above can tell an engine message apart from an I/O problem.
package storage
