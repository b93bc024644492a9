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
	"fmt"
	"os"
	"sync"
	"time"

	cozo "github.com/kraklabs/graphdemo/pkg/cozodb"
)

// EmbeddedBackend implements Backend using a local CozoDB instance.
type EmbeddedBackend struct {
	db     *cozo.CozoDB
	mu     sync.RWMutex
	closed bool
}

// EmbeddedConfig configures the embedded backend.
type EmbeddedConfig struct {
	// DataDir is the directory where CozoDB stores its data. Required.
	DataDir string

	// Engine is the CozoDB storage engine: "rocksdb", "sqlite", or "mem".
	// Defaults to "rocksdb" for persistence.
	Engine string
}

// NewEmbeddedBackend creates a new embedded CozoDB backend.
func NewEmbeddedBackend(config EmbeddedConfig) (*EmbeddedBackend, error) {
	if config.Engine == "" {
		config.Engine = "rocksdb"
	}
	if config.DataDir == "" {
		return nil, fmt.Errorf("data dir is required")
	}

	if err := os.MkdirAll(config.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	// The sqlite engine wants a file, the others a directory.
	path := config.DataDir
	if config.Engine == "sqlite" {
		path = config.DataDir + "/data.db"
	}

	db, err := cozo.New(config.Engine, path, nil)
	if err != nil {
		return nil, fmt.Errorf("open cozodb: %w", translate(err))
	}

	return &EmbeddedBackend{
		db: &db,
	}, nil
}

// Run executes a script that may mutate stored relations.
func (b *EmbeddedBackend) Run(ctx context.Context, script string, params map[string]any) (*QueryResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(ctx); err != nil {
		return nil, err
	}

	result, err := b.db.Run(script, params)
	if err != nil {
		return nil, translate(err)
	}
	return fromNamedRows(result), nil
}

// RunReadOnly executes a script with the engine's immutable flag set.
func (b *EmbeddedBackend) RunReadOnly(ctx context.Context, script string, params map[string]any) (*QueryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.check(ctx); err != nil {
		return nil, err
	}

	result, err := b.db.RunReadOnly(script, params)
	if err != nil {
		return nil, translate(err)
	}
	return fromNamedRows(result), nil
}

// Import writes rows into relation through the engine's bulk import path.
func (b *EmbeddedBackend) Import(ctx context.Context, relation string, headers []string, rows [][]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(ctx); err != nil {
		return err
	}

	err := b.db.ImportRelations(map[string]cozo.NamedRows{
		relation: {Headers: headers, Rows: rows},
	})
	return translate(err)
}

// Backup writes a snapshot of the database to path.
func (b *EmbeddedBackend) Backup(ctx context.Context, path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.check(ctx); err != nil {
		return err
	}
	return translate(b.db.Backup(path))
}

// Restore loads a snapshot into the (empty) database.
func (b *EmbeddedBackend) Restore(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(ctx); err != nil {
		return err
	}
	return translate(b.db.Restore(path))
}

// Close closes the database connection.
func (b *EmbeddedBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	b.db.Close()
	return nil
}

// check must be called with b.mu held.
func (b *EmbeddedBackend) check(ctx context.Context) error {
	if b.closed {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func fromNamedRows(nr cozo.NamedRows) *QueryResult {
	return &QueryResult{
		Headers: nr.Headers,
		Rows:    nr.Rows,
		Took:    time.Duration(nr.Took * float64(time.Second)),
	}
}

// translate maps binding errors onto EngineError so callers above this
// package never import the cgo binding.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var ce *cozo.Error
	if errors.As(err, &ce) {
		return &EngineError{Message: ce.Error()}
	}
	return err
}
