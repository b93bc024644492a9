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

package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by NewEmbeddedBackend when the binary was built
// without the cozodb tag.
var ErrUnavailable = errors.New("embedded engine not available: rebuild with -tags cozodb")

// ErrClosed is returned by every operation on a closed backend.
var ErrClosed = errors.New("backend is closed")

// Backend is the interface the engine layer runs scripts through.
// EmbeddedBackend is the only production implementation; tests use fakes.
type Backend interface {
	// Run executes a script that may mutate stored relations.
	Run(ctx context.Context, script string, params map[string]any) (*QueryResult, error)

	// RunReadOnly executes a script that must not mutate anything.
	RunReadOnly(ctx context.Context, script string, params map[string]any) (*QueryResult, error)

	// Import writes rows into a stored relation in one call.
	Import(ctx context.Context, relation string, headers []string, rows [][]any) error

	// Backup writes a snapshot of the whole database to path.
	Backup(ctx context.Context, path string) error

	// Restore loads a snapshot written by Backup into an empty database.
	Restore(ctx context.Context, path string) error

	// Close releases any resources held by the backend.
	Close() error
}

// QueryResult represents the result of a script.
type QueryResult struct {
	Headers []string
	Rows    [][]any

	// Took is the engine-reported run time.
	Took time.Duration
}

// EngineError carries a message produced by the database engine itself,
// as opposed to transport or encoding failures.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}

// IsEngineError reports whether err was produced by the engine.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}
