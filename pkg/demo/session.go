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

package demo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

// Conn is the part of *engine.Connection the session drives.
type Conn interface {
	Query(ctx context.Context, text string) (*engine.QueryResult, error)
	Prepare(text string) (*engine.PreparedStatement, error)
	Execute(ctx context.Context, ps *engine.PreparedStatement, params map[string]any) (*engine.QueryResult, error)
	SetMaxNumThreadsForExec(n uint64)
	MaxNumThreadsForExec() uint64
}

// Opener opens the engine for a session and returns the handle to close it
// with and the connection to run statements on.
type Opener func(path string, cfg engine.SystemConfig) (io.Closer, Conn, error)

// EngineOpener opens an embedded engine database.
func EngineOpener(opts ...engine.Option) Opener {
	return func(path string, cfg engine.SystemConfig) (io.Closer, Conn, error) {
		db, err := engine.Open(path, cfg, opts...)
		if err != nil {
			return nil, nil, err
		}
		conn, err := db.Connect()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, conn, nil
	}
}

// Settings are the two values the setup screen collects.
type Settings struct {
	BufferPoolMB uint64
	Threads      uint64
}

// SystemConfig translates settings into the engine configuration.
func (s Settings) SystemConfig(storage string) engine.SystemConfig {
	return engine.SystemConfig{
		BufferPoolSize:      s.BufferPoolMB * 1_048_576,
		MaxNumThreads:       s.Threads,
		EnableCompression:   true,
		ReadOnly:            false,
		AutoCheckpoint:      true,
		CheckpointThreshold: math.MaxUint64,
		Storage:             storage,
	}
}

// Config configures a Session.
type Config struct {
	// Dir is the engine directory for this session.
	Dir string

	// DatasetDir holds the dataset files.
	DatasetDir string

	// Storage is the engine storage; empty means the engine default.
	Storage string

	// Opener opens the engine. Defaults to EngineOpener().
	Opener Opener

	// Output receives a copy of every log entry. May be nil.
	Output io.Writer

	// Progress reports long insert loops. Defaults to no reporting.
	Progress ProgressFunc

	Logger *slog.Logger
}

// Status is a snapshot of the session state.
type Status struct {
	Dir         string
	Initialized bool
	Loaded      []Dataset
	Threads     uint64
}

// Session owns the engine handle and its single connection. Every action is
// queued on the session's dispatcher, so actions run one at a time in the
// order they were requested.
type Session struct {
	cfg    Config
	log    *Log
	disp   *Dispatcher
	logger *slog.Logger

	mu            sync.Mutex
	initRequested bool
	db            io.Closer
	conn          Conn
	loaded        map[Dataset]bool
	closed        bool
}

// NewSession creates a session. Nothing is opened until Init.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Opener == nil {
		cfg.Opener = EngineOpener(engine.WithLogger(cfg.Logger))
	}
	if cfg.Progress == nil {
		cfg.Progress = noProgress
	}
	return &Session{
		cfg:    cfg,
		log:    NewLog(cfg.Output),
		disp:   NewDispatcher(cfg.Logger),
		logger: cfg.Logger,
		loaded: make(map[Dataset]bool),
	}
}

// Log returns the session scrollback.
func (s *Session) Log() *Log { return s.log }

// Dir returns the engine directory.
func (s *Session) Dir() string { return s.cfg.Dir }

// Initialized reports whether Init has completed successfully.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Loaded reports whether d has been loaded successfully.
func (s *Session) Loaded(d Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded[d]
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Dir: s.cfg.Dir, Initialized: s.conn != nil}
	for d, ok := range s.loaded {
		if ok {
			st.Loaded = append(st.Loaded, d)
		}
	}
	sort.Slice(st.Loaded, func(i, j int) bool { return st.Loaded[i] < st.Loaded[j] })
	if s.conn != nil {
		st.Threads = s.conn.MaxNumThreadsForExec()
	}
	return st
}

// Init opens the engine with the given settings. It may only be requested
// once per session; a failed Init can be requested again.
func (s *Session) Init(settings Settings) (*Task, error) {
	if settings.BufferPoolMB == 0 || settings.Threads == 0 {
		return nil, fmt.Errorf("%w: memory budget and thread count must be greater than zero", ErrInvalidSettings)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.initRequested {
		s.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}
	s.initRequested = true
	s.mu.Unlock()

	cfg := settings.SystemConfig(s.cfg.Storage)
	return s.submit("init", func(ctx context.Context) error {
		s.log.Appendf("Initializing engine with BM=%d, threads=%d", cfg.BufferPoolSize, cfg.MaxNumThreads)
		s.logger.Info("session.init.start", "dir", s.cfg.Dir, "buffer_pool_bytes", cfg.BufferPoolSize, "threads", cfg.MaxNumThreads)

		db, conn, err := s.cfg.Opener(s.cfg.Dir, cfg)
		if err != nil {
			s.mu.Lock()
			s.initRequested = false
			s.mu.Unlock()
			return err
		}

		s.mu.Lock()
		s.db, s.conn = db, conn
		s.mu.Unlock()

		s.log.Append("Initialization done")
		s.log.Append(Separator)
		s.logger.Info("session.init.done", "dir", s.cfg.Dir)
		return nil
	}), nil
}

// ExecuteQuery runs one free-form statement. The log gets one entry with
// the statement before it runs and one entry with the rendered result and
// its timing, or the failure.
func (s *Session) ExecuteQuery(text string) (*Task, error) {
	if err := s.requireInitRequested(); err != nil {
		return nil, err
	}
	return s.submit("query", func(ctx context.Context) error {
		conn, err := s.connection()
		if err != nil {
			return err
		}
		r := s.runner(conn, "")
		_, err = r.exec(ctx, text)
		return err
	}), nil
}

// Load loads dataset d.
func (s *Session) Load(d Dataset) (*Task, error) {
	w, err := workloadFor(d)
	if err != nil {
		return nil, err
	}
	if err := s.requireInitRequested(); err != nil {
		return nil, err
	}
	return s.submit("load:"+string(d), func(ctx context.Context) error {
		conn, err := s.connection()
		if err != nil {
			return err
		}
		if err := w.load(ctx, s.runner(conn, s.cfg.DatasetDir)); err != nil {
			return err
		}
		s.mu.Lock()
		s.loaded[d] = true
		s.mu.Unlock()
		s.logger.Info("session.load.done", "dataset", string(d))
		return nil
	}), nil
}

// Bench runs the benchmark of dataset d. The dataset must have been loaded
// by an earlier action.
func (s *Session) Bench(d Dataset) (*Task, error) {
	w, err := workloadFor(d)
	if err != nil {
		return nil, err
	}
	if err := s.requireInitRequested(); err != nil {
		return nil, err
	}
	return s.submit("bench:"+string(d), func(ctx context.Context) error {
		conn, err := s.connection()
		if err != nil {
			return err
		}
		if !s.Loaded(d) {
			return fmt.Errorf("%w: %s", ErrNotLoaded, d)
		}
		if err := w.bench(ctx, s.runner(conn, s.cfg.DatasetDir)); err != nil {
			return err
		}
		s.logger.Info("session.bench.done", "dataset", string(d))
		return nil
	}), nil
}

// ClearLog empties the scrollback.
func (s *Session) ClearLog() {
	s.log.Clear()
}

// Close waits for queued actions, then closes the engine.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.disp.Close()

	s.mu.Lock()
	db := s.db
	s.db, s.conn = nil, nil
	s.mu.Unlock()
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}

// submit queues fn and writes the single failure line when an engine call
// inside it fails.
func (s *Session) submit(name string, fn func(context.Context) error) *Task {
	return s.disp.Submit(name, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && !IsGating(err) {
			s.log.Append(failureLine(err))
		}
		return err
	})
}

func (s *Session) requireInitRequested() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.initRequested {
		return ErrNotInitialized
	}
	return nil
}

// connection returns the open connection; it is only valid once the Init
// task has completed.
func (s *Session) connection() (Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotInitialized
	}
	return s.conn, nil
}

func (s *Session) runner(conn Conn, datasetDir string) *runner {
	return &runner{
		conn:       conn,
		log:        s.log,
		logger:     s.logger,
		datasetDir: datasetDir,
		progress:   s.cfg.Progress,
	}
}
