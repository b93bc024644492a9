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
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphdemo/internal/config"
)

func TestNewProgressConfig(t *testing.T) {
	tests := []struct {
		name            string
		globals         GlobalFlags
		expectedNoColor bool
	}{
		{"default flags", GlobalFlags{}, false},
		{"quiet mode", GlobalFlags{Quiet: true}, false},
		{"JSON mode", GlobalFlags{JSON: true, Quiet: true}, false},
		{"noColor flag propagates", GlobalFlags{NoColor: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProgressConfig(tt.globals)
			// stderr is not a TTY under go test
			if cfg.Enabled {
				t.Error("NewProgressConfig().Enabled = true, want false")
			}
			if cfg.NoColor != tt.expectedNoColor {
				t.Errorf("NewProgressConfig().NoColor = %v, want %v", cfg.NoColor, tt.expectedNoColor)
			}
			if cfg.Writer != os.Stderr {
				t.Error("NewProgressConfig().Writer should be os.Stderr")
			}
		})
	}
}

func TestNewProgressBar(t *testing.T) {
	t.Run("disabled config returns nil", func(t *testing.T) {
		if bar := NewProgressBar(ProgressConfig{Enabled: false}, 100, "Test"); bar != nil {
			t.Error("NewProgressBar() should return nil when disabled")
		}
	})

	t.Run("enabled config draws to the writer", func(t *testing.T) {
		var buf bytes.Buffer
		bar := NewProgressBar(ProgressConfig{Enabled: true, Writer: &buf, NoColor: true}, 10, "inserting")
		require.NotNil(t, bar)
		require.NoError(t, bar.Add(10))
		require.NoError(t, bar.Finish())
		assert.Equal(t, int64(10), bar.State().CurrentNum)
	})
}

func TestProgressFunc(t *testing.T) {
	silent := progressFunc(ProgressConfig{Enabled: false})("inserting", 5)
	assert.IsType(t, silentProgress{}, silent)
	silent.Add(5)
	silent.Finish()

	var buf bytes.Buffer
	p := progressFunc(ProgressConfig{Enabled: true, Writer: &buf, NoColor: true})("inserting", 5)
	require.IsType(t, barProgress{}, p)
	p.Add(5)
	p.Finish()
	assert.Equal(t, int64(5), p.(barProgress).bar.State().CurrentNum)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("engine.open", "dir", "/tmp/x")
	logger.Warn("copy.batch", "rows", 10)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "info is filtered at warn level")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "copy.batch", rec["msg"])
	assert.Equal(t, float64(10), rec["rows"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("session.init.start", "threads", 4)
	assert.Contains(t, buf.String(), "session.init.start")
	assert.Contains(t, buf.String(), "threads")
	assert.Contains(t, buf.String(), "graphdemo")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "parseLevel(%q)", tt.in)
	}
}

func TestStartMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := startMetrics("127.0.0.1:0", logger)
	require.NoError(t, err)
	defer m.close()

	resp, err := http.Get("http://" + m.addr + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStartMetrics_AddressInUse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := startMetrics("127.0.0.1:0", logger)
	require.NoError(t, err)
	defer m.close()

	_, err = startMetrics(m.addr, logger)
	assert.Error(t, err)
}

func TestNewApp_MetricsError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := startMetrics("127.0.0.1:0", logger)
	require.NoError(t, err)
	defer m.close()

	cfg := config.Default()
	cfg.MetricsAddr = m.addr
	_, err = newApp(cfg, GlobalFlags{}, strings.NewReader(""), io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot serve metrics")
}
