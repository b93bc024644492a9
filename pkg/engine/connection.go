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
	"sync/atomic"
	"time"

	"github.com/kraklabs/graphdemo/pkg/storage"
)

// Connection runs statements against a Database. A connection may be used
// from several goroutines, but the demo serializes all work on one.
type Connection struct {
	db      *Database
	threads atomic.Uint64
}

// PreparedStatement is a statement parsed once and executed with many
// parameter sets.
type PreparedStatement struct {
	stmt        *statement
	compileTime time.Duration
}

// Text returns the statement text.
func (ps *PreparedStatement) Text() string { return ps.stmt.text }

// Params returns the parameter names the statement expects, in order of use.
func (ps *PreparedStatement) Params() []string {
	return append([]string(nil), ps.stmt.params...)
}

// SetMaxNumThreadsForExec bounds the parallelism of later statements on this
// connection. Zero is treated as one.
func (c *Connection) SetMaxNumThreadsForExec(n uint64) {
	if n == 0 {
		n = 1
	}
	c.threads.Store(n)
}

// MaxNumThreadsForExec returns the connection's thread override.
func (c *Connection) MaxNumThreadsForExec() uint64 {
	return c.threads.Load()
}

// Query parses and runs one statement.
func (c *Connection) Query(ctx context.Context, text string) (*QueryResult, error) {
	start := time.Now()
	stmt, err := parseStatement(text)
	if err != nil {
		recordStatement(kindScript, err, time.Since(start))
		return nil, err
	}
	return c.run(ctx, stmt, nil, time.Since(start))
}

// Prepare parses a statement for repeated execution.
func (c *Connection) Prepare(text string) (*PreparedStatement, error) {
	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	stmt, err := parseStatement(text)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{stmt: stmt, compileTime: time.Since(start)}, nil
}

// Execute binds params to a prepared statement and runs it.
func (c *Connection) Execute(ctx context.Context, ps *PreparedStatement, params map[string]any) (*QueryResult, error) {
	start := time.Now()
	bound, err := bindParams(ps.stmt.params, params)
	if err != nil {
		recordStatement(ps.stmt.kind, err, time.Since(start))
		return nil, err
	}
	return c.run(ctx, ps.stmt, bound, ps.compileTime+time.Since(start))
}

func (c *Connection) run(ctx context.Context, stmt *statement, params map[string]any, compile time.Duration) (res *QueryResult, err error) {
	start := time.Now()
	defer func() {
		recordStatement(stmt.kind, err, compile+time.Since(start))
		if err != nil {
			c.db.logger.Debug("engine.statement.failed", "kind", stmt.kind.String(), "err", err)
		}
	}()

	if err := c.db.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, runtimeError("query", err)
	}
	if stmt.mutating && c.db.config.ReadOnly {
		return nil, &Error{Kind: KindReadOnly, Message: "cannot execute a mutating statement on a read-only database"}
	}

	var exec time.Duration
	switch stmt.kind {
	case kindCheckpoint:
		took, err := c.db.Checkpoint(ctx)
		if err != nil {
			return nil, err
		}
		res = &QueryResult{Headers: []string{"result"}, Rows: [][]any{{"Checkpoint completed."}}}
		exec = took

	case kindCopy:
		res, err = c.copy(ctx, stmt.copy)
		if err != nil {
			return nil, err
		}
		exec = time.Since(start)

	default:
		var raw *storage.QueryResult
		if stmt.mutating {
			raw, err = c.db.backend.Run(ctx, stmt.text, params)
		} else {
			raw, err = c.db.backend.RunReadOnly(ctx, stmt.text, params)
		}
		if err != nil {
			return nil, runtimeError("query", err)
		}
		res = &QueryResult{Headers: raw.Headers, Rows: raw.Rows}
		exec = raw.Took
		if exec <= 0 {
			exec = time.Since(start)
		}
	}

	res.compileTime = compile
	res.execTime = exec

	if stmt.mutating {
		if err := c.db.noteMutation(ctx); err != nil {
			return nil, err
		}
	}
	return res, nil
}
