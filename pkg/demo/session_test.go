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
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

func TestSession_InitOpensOnceWithTranslatedConfig(t *testing.T) {
	tests := []struct {
		bm      uint64
		threads uint64
	}{
		{1, 1},
		{256, 4},
		{4096, 16},
	}

	for _, tt := range tests {
		fe := newFakeEngine()
		s := newTestSession(t, fe, "")

		task, err := s.Init(Settings{BufferPoolMB: tt.bm, Threads: tt.threads})
		require.NoError(t, err)
		require.NoError(t, wait(t, task))

		calls := fe.openCalls()
		require.Len(t, calls, 1)
		cfg := calls[0].cfg
		assert.Equal(t, "/tmp/graphdemo/test-session", calls[0].path)
		assert.Equal(t, tt.bm*1_048_576, cfg.BufferPoolSize)
		assert.Equal(t, tt.threads, cfg.MaxNumThreads)
		assert.True(t, cfg.EnableCompression)
		assert.False(t, cfg.ReadOnly)
		assert.True(t, cfg.AutoCheckpoint)
		assert.Equal(t, uint64(math.MaxUint64), cfg.CheckpointThreshold)
		assert.Equal(t, engine.StorageMem, cfg.Storage)

		assert.True(t, s.Initialized())
		assert.Equal(t, []string{
			"Initializing engine with BM=" + strconv.FormatUint(tt.bm*1_048_576, 10) + ", threads=" + strconv.FormatUint(tt.threads, 10),
			"Initialization done",
			Separator,
		}, s.Log().Entries())
	}
}

func TestSession_InitRejections(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, "")

	_, err := s.Init(Settings{BufferPoolMB: 0, Threads: 1})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	_, err = s.Init(Settings{BufferPoolMB: 1, Threads: 0})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	initSession(t, s)
	_, err = s.Init(Settings{BufferPoolMB: 1, Threads: 1})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Len(t, fe.openCalls(), 1)
}

func TestSession_InitFailureIsLoggedAndRetryable(t *testing.T) {
	fe := newFakeEngine()
	fe.openErr = &engine.Error{Kind: engine.KindInit, Message: "cannot open database"}
	s := newTestSession(t, fe, "")

	task, err := s.Init(Settings{BufferPoolMB: 1, Threads: 1})
	require.NoError(t, err)
	err = wait(t, task)
	assert.True(t, engine.IsKind(err, engine.KindInit))
	assert.False(t, s.Initialized())

	entries := s.Log().Entries()
	assert.Equal(t, "Query failed: cannot open database", entries[len(entries)-1])

	fe.openErr = nil
	initSession(t, s)
	assert.True(t, s.Initialized())
}

func TestSession_ActionsRejectedBeforeInit(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, t.TempDir())

	for _, d := range Datasets() {
		_, err := s.Load(d)
		assert.ErrorIs(t, err, ErrNotInitialized, "load %s", d)
		_, err = s.Bench(d)
		assert.ErrorIs(t, err, ErrNotInitialized, "bench %s", d)
	}
	_, err := s.ExecuteQuery("?[x] <- [[1]]")
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.Empty(t, fe.openCalls())
	assert.Empty(t, fe.conn.snapshot())
	assert.Zero(t, s.Log().Len())
}

func TestSession_LoadQueuedBehindFailedInit(t *testing.T) {
	fe := newFakeEngine()
	fe.openErr = errors.New("disk full")
	s := newTestSession(t, fe, t.TempDir())

	initTask, err := s.Init(Settings{BufferPoolMB: 1, Threads: 1})
	require.NoError(t, err)
	loadTask, err := s.Load(MSMarco)
	require.NoError(t, err)

	assert.Error(t, wait(t, initTask))
	assert.ErrorIs(t, wait(t, loadTask), ErrNotInitialized)
	assert.Empty(t, fe.conn.snapshot())

	entries := s.Log().Entries()
	assert.Equal(t, "Query failed with unknown error", entries[len(entries)-1])
}

func TestSession_BenchRequiresLoad(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, t.TempDir())
	initSession(t, s)

	task, err := s.Bench(LastFM)
	require.NoError(t, err)
	assert.ErrorIs(t, wait(t, task), ErrNotLoaded)
	assert.Empty(t, fe.conn.snapshot())
}

func TestSession_LoadFailureKeepsDatasetUnloaded(t *testing.T) {
	fe := newFakeEngine()
	fe.conn.failOn["COPY"] = &engine.Error{Kind: engine.KindCopy, Message: "open collection_sample.tsv: no such file"}
	s := newTestSession(t, fe, t.TempDir())
	initSession(t, s)

	task, err := s.Load(MSMarco)
	require.NoError(t, err)
	assert.Error(t, wait(t, task))
	assert.False(t, s.Loaded(MSMarco))

	entries := s.Log().Entries()
	assert.Equal(t, "Query failed: open collection_sample.tsv: no such file", entries[len(entries)-1])
	failures := 0
	for _, e := range entries {
		if strings.HasPrefix(e, "Query failed") {
			failures++
		}
	}
	assert.Equal(t, 1, failures)
}

func TestSession_ExecuteQueryLogsTwoEntries(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, "")
	initSession(t, s)
	s.ClearLog()

	task, err := s.ExecuteQuery("?[count(id)] := *doc{id}")
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	entries := s.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Executing query: ?[count(id)] := *doc{id}", entries[0])
	assert.Contains(t, entries[1], "42")
	assert.Contains(t, entries[1], "Execution time: ")
	assert.True(t, strings.HasSuffix(entries[1], Separator))
}

func TestSession_ExecuteQueryFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"engine error", &engine.Error{Kind: engine.KindRuntime, Message: "stored relation 'doc' not found"}, "Query failed: stored relation 'doc' not found"},
		{"other error", errors.New("connection reset"), "Query failed with unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := newFakeEngine()
			fe.conn.failOn["?"] = tt.err
			s := newTestSession(t, fe, "")
			initSession(t, s)
			s.ClearLog()

			task, err := s.ExecuteQuery("?[id] := *doc{id}")
			require.NoError(t, err)
			assert.ErrorIs(t, wait(t, task), tt.err)
			assert.Equal(t, []string{"Executing query: ?[id] := *doc{id}", tt.want}, s.Log().Entries())
		})
	}
}

func TestSession_RepeatedReadsLogIdenticalRows(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, "")
	initSession(t, s)
	s.ClearLog()

	for i := 0; i < 3; i++ {
		task, err := s.ExecuteQuery("?[count(id)] := *doc{id}")
		require.NoError(t, err)
		require.NoError(t, wait(t, task))
	}

	entries := s.Log().Entries()
	require.Len(t, entries, 6)
	first := strings.SplitN(entries[1], "\nExecution time:", 2)[0]
	for i := 3; i < len(entries); i += 2 {
		assert.Equal(t, first, strings.SplitN(entries[i], "\nExecution time:", 2)[0])
	}
}

func TestSession_ActionsRunInSubmissionOrder(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, "")

	initTask, err := s.Init(Settings{BufferPoolMB: 1, Threads: 1})
	require.NoError(t, err)

	var tasks []*Task
	for _, q := range []string{"?[a] <- [[1]]", "?[b] <- [[2]]", "?[c] <- [[3]]"} {
		task, err := s.ExecuteQuery(q)
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	require.NoError(t, wait(t, initTask))
	for _, task := range tasks {
		require.NoError(t, wait(t, task))
	}
	assert.Equal(t, []string{"?[a] <- [[1]]", "?[b] <- [[2]]", "?[c] <- [[3]]"}, fe.conn.snapshot())
}

func TestSession_CloseClosesEngine(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, "")
	initSession(t, s)

	require.NoError(t, s.Close())
	assert.True(t, fe.db.closed)
	require.NoError(t, s.Close())

	_, err := s.ExecuteQuery("?[x] <- [[1]]")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_Status(t *testing.T) {
	fe := newFakeEngine()
	s := newTestSession(t, fe, t.TempDir())
	assert.False(t, s.Status().Initialized)

	initSession(t, s)
	task, err := s.Load(MSMarco)
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	st := s.Status()
	assert.True(t, st.Initialized)
	assert.Equal(t, []Dataset{MSMarco}, st.Loaded)
	assert.Equal(t, uint64(4), st.Threads)
	assert.Equal(t, "/tmp/graphdemo/test-session", st.Dir)
}
