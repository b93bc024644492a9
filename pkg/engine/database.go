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
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kraklabs/graphdemo/pkg/storage"
)

// Database is an open engine handle bound to one directory.
type Database struct {
	path    string
	config  SystemConfig
	backend storage.Backend
	logger  *slog.Logger

	mu        sync.Mutex // guards mutations and closed
	mutations uint64
	closed    bool

	ckMu sync.Mutex // serializes checkpoints
}

// Open opens (or creates) the database at path.
func Open(path string, cfg SystemConfig, opts ...Option) (*Database, error) {
	o := options{opener: embeddedOpener}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cfg = cfg.normalize()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}

	if cfg.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, &Error{Kind: KindInit, Message: fmt.Sprintf("read-only database path %s does not exist", path), Err: err}
		}
	} else if err := os.MkdirAll(path, 0750); err != nil {
		return nil, &Error{Kind: KindInit, Message: fmt.Sprintf("create database directory %s: %v", path, err), Err: err}
	}

	backend, err := o.opener(cfg.Storage, path)
	if err != nil {
		return nil, &Error{Kind: KindInit, Message: fmt.Sprintf("open database at %s: %v", path, err), Err: err}
	}

	db := &Database{
		path:    path,
		config:  cfg,
		backend: backend,
		logger:  o.logger,
	}

	if cfg.Storage == StorageMem {
		restored, err := db.restoreSnapshot(context.Background())
		if err != nil {
			_ = backend.Close()
			return nil, &Error{Kind: KindInit, Message: fmt.Sprintf("restore checkpoint: %v", err), Err: err}
		}
		if restored {
			db.logger.Info("engine.checkpoint.restored", "path", path)
		}
	}

	engMetrics.init()
	engMetrics.opens.Inc()

	db.logger.Info("engine.open",
		"path", path,
		"storage", cfg.Storage,
		"buffer_pool_bytes", cfg.BufferPoolSize,
		"threads", cfg.MaxNumThreads,
		"read_only", cfg.ReadOnly,
	)
	return db, nil
}

// Path returns the database directory.
func (db *Database) Path() string { return db.path }

// Config returns the normalized configuration the database was opened with.
func (db *Database) Config() SystemConfig { return db.config }

// Connect returns a new connection. The connection's thread override starts
// at the database's MaxNumThreads.
func (db *Database) Connect() (*Connection, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	c := &Connection{db: db}
	c.threads.Store(db.config.MaxNumThreads)
	return c, nil
}

// Checkpoint makes every mutation so far durable and returns how long it took.
func (db *Database) Checkpoint(ctx context.Context) (time.Duration, error) {
	if err := db.checkOpen(); err != nil {
		return 0, err
	}
	if db.config.ReadOnly {
		return 0, &Error{Kind: KindReadOnly, Message: "cannot checkpoint a read-only database"}
	}
	return db.checkpoint(ctx)
}

func (db *Database) checkpoint(ctx context.Context) (time.Duration, error) {
	db.ckMu.Lock()
	defer db.ckMu.Unlock()

	start := time.Now()
	db.mu.Lock()
	pending := db.mutations
	db.mu.Unlock()

	if db.config.Storage == StorageMem {
		if err := db.writeSnapshot(ctx, pending); err != nil {
			return 0, runtimeError("checkpoint", err)
		}
	}

	db.mu.Lock()
	if db.mutations >= pending {
		db.mutations -= pending
	} else {
		db.mutations = 0
	}
	db.mu.Unlock()

	took := time.Since(start)
	engMetrics.init()
	engMetrics.checkpoints.Inc()
	engMetrics.checkpointSeconds.Observe(took.Seconds())
	db.logger.Info("engine.checkpoint", "path", db.path, "mutations", pending, "duration", took)
	return took, nil
}

// noteMutation counts a successful mutating statement and runs an automatic
// checkpoint once the threshold is reached.
func (db *Database) noteMutation(ctx context.Context) error {
	db.mu.Lock()
	db.mutations++
	due := db.config.AutoCheckpoint && db.mutations >= db.config.CheckpointThreshold
	db.mu.Unlock()
	if !due {
		return nil
	}
	_, err := db.checkpoint(ctx)
	return err
}

// Close checkpoints pending mutations when auto-checkpoint is enabled and
// releases the backend. Calling Close more than once is a no-op.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	pending := db.mutations
	db.mu.Unlock()

	var ckErr error
	if db.config.AutoCheckpoint && !db.config.ReadOnly && pending > 0 {
		_, ckErr = db.checkpoint(context.Background())
	}
	if err := db.backend.Close(); err != nil {
		return runtimeError("close", err)
	}
	db.logger.Info("engine.close", "path", db.path)
	return ckErr
}

func (db *Database) checkOpen() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return &Error{Kind: KindClosed, Message: "database is closed"}
	}
	return nil
}
