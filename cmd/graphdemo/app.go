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

package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/kraklabs/graphdemo/internal/bootstrap"
	"github.com/kraklabs/graphdemo/internal/config"
	"github.com/kraklabs/graphdemo/internal/errors"
	"github.com/kraklabs/graphdemo/internal/ui"
	"github.com/kraklabs/graphdemo/pkg/demo"
	"github.com/kraklabs/graphdemo/pkg/engine"
)

// app carries what every command needs: the resolved configuration, the
// logger and the standard streams.
type app struct {
	cfg     *config.Config
	globals GlobalFlags
	logger  *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	metrics *metricsServer

	// opener replaces the embedded engine in tests.
	opener demo.Opener
}

func newApp(cfg *config.Config, globals GlobalFlags, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	logger := newLogger(cfg.Log, stderr)
	slog.SetDefault(logger)

	a := &app{
		cfg:     cfg,
		globals: globals,
		logger:  logger,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
	if cfg.MetricsAddr != "" {
		m, err := startMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return nil, errors.NewNetworkError("Cannot serve metrics", err.Error(), "Pick a free address with --metrics-addr", err)
		}
		a.metrics = m
	}
	return a, nil
}

func (a *app) close() {
	if a.metrics != nil {
		a.metrics.close()
	}
}

// settings returns the init settings taken from the configuration.
func (a *app) settings() demo.Settings {
	return demo.Settings{BufferPoolMB: a.cfg.BufferPoolMB, Threads: a.cfg.Threads}
}

// newSession creates a session in a fresh directory. Log entries are
// echoed to out when it is not nil. The returned func closes the session
// and, with cleanup_on_exit, removes its directory.
func (a *app) newSession(out io.Writer) (*demo.Session, func() error, error) {
	dir, err := bootstrap.NewSessionDir(a.cfg.TempDir, a.logger)
	if err != nil {
		return nil, nil, errors.NewPermissionError("Cannot create session directory", err.Error(), "Check temp_dir or pass --temp-dir", err)
	}

	opener := a.opener
	if opener == nil {
		opener = demo.EngineOpener(engine.WithLogger(a.logger))
	}
	s := demo.NewSession(demo.Config{
		Dir:        dir,
		DatasetDir: a.cfg.DatasetDir,
		Storage:    a.cfg.Storage,
		Opener:     opener,
		Output:     out,
		Progress:   progressFunc(NewProgressConfig(a.globals)),
		Logger:     a.logger,
	})

	done := func() error {
		err := s.Close()
		if a.cfg.CleanupOnExit {
			if rmErr := bootstrap.RemoveSession(a.cfg.TempDir, filepath.Base(dir), a.logger); rmErr != nil && err == nil {
				err = rmErr
			}
		}
		return err
	}
	return s, done, nil
}

// entryWriter styles each session log entry before writing it.
type entryWriter struct {
	w io.Writer
}

func (e entryWriter) Write(p []byte) (int, error) {
	text := string(p)
	trimmed := len(text) > 0 && text[len(text)-1] == '\n'
	if trimmed {
		text = text[:len(text)-1]
	}
	styled := ui.Entry(text)
	if trimmed {
		styled += "\n"
	}
	if _, err := io.WriteString(e.w, styled); err != nil {
		return 0, err
	}
	return len(p), nil
}
