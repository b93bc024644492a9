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
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/kraklabs/graphdemo/pkg/storage"
)

// Storage engines understood by Open.
const (
	StorageRocksDB = "rocksdb"
	StorageSQLite  = "sqlite"
	StorageMem     = "mem"
)

// SystemConfig is the configuration bundle a database is opened with.
type SystemConfig struct {
	// BufferPoolSize is the memory budget in bytes. It bounds the size of
	// each bulk import batch.
	BufferPoolSize uint64

	// MaxNumThreads is the default worker count for new connections.
	MaxNumThreads uint64

	// EnableCompression compresses checkpoint snapshots with zstd.
	EnableCompression bool

	// ReadOnly rejects every mutating statement.
	ReadOnly bool

	// AutoCheckpoint checkpoints after CheckpointThreshold mutating
	// statements and on Close.
	AutoCheckpoint bool

	// CheckpointThreshold is the number of mutating statements between
	// automatic checkpoints. Zero means unset (math.MaxUint64).
	CheckpointThreshold uint64

	// Storage selects the CozoDB storage engine. Defaults to "rocksdb".
	Storage string
}

// DefaultSystemConfig returns the configuration the demo opens databases
// with when nothing is overridden.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		BufferPoolSize:      256 << 20,
		MaxNumThreads:       uint64(runtime.NumCPU()),
		EnableCompression:   true,
		ReadOnly:            false,
		AutoCheckpoint:      true,
		CheckpointThreshold: math.MaxUint64,
		Storage:             StorageRocksDB,
	}
}

func (c SystemConfig) normalize() SystemConfig {
	if c.CheckpointThreshold == 0 {
		c.CheckpointThreshold = math.MaxUint64
	}
	if c.Storage == "" {
		c.Storage = StorageRocksDB
	}
	return c
}

func (c SystemConfig) validate(path string) error {
	if path == "" {
		return &Error{Kind: KindInit, Message: "database path is empty"}
	}
	if c.BufferPoolSize == 0 {
		return &Error{Kind: KindInit, Message: "buffer pool size must be greater than zero"}
	}
	if c.MaxNumThreads == 0 {
		return &Error{Kind: KindInit, Message: "max number of threads must be greater than zero"}
	}
	switch c.Storage {
	case StorageRocksDB, StorageSQLite, StorageMem:
	default:
		return &Error{Kind: KindInit, Message: fmt.Sprintf("unknown storage engine %q", c.Storage)}
	}
	return nil
}

// BackendOpener opens the storage backend for a database directory.
type BackendOpener func(engine, dir string) (storage.Backend, error)

// Option configures Open.
type Option func(*options)

type options struct {
	opener BackendOpener
	logger *slog.Logger
}

// WithBackendOpener replaces the embedded CozoDB backend, mainly for tests.
func WithBackendOpener(opener BackendOpener) Option {
	return func(o *options) { o.opener = opener }
}

// WithLogger sets the logger used for engine events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func embeddedOpener(engine, dir string) (storage.Backend, error) {
	backend, err := storage.NewEmbeddedBackend(storage.EmbeddedConfig{
		DataDir: dir,
		Engine:  engine,
	})
	if err != nil {
		return nil, err
	}
	return backend, nil
}
