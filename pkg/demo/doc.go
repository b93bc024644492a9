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

// Package demo is the orchestration layer of the graph database demo: a
// setup controller, a query pad and a session that runs dataset loads,
// benchmarks and free-form queries against one engine connection and
// reports everything into a scrollback log.
//
// All engine work goes through a Dispatcher, which runs actions one at a
// time in submission order. Every action returns a *Task that can be
// awaited.
//
//	s := demo.NewSession(demo.Config{Dir: dir, DatasetDir: data})
//	t, _ := s.Init(demo.Settings{BufferPoolMB: 256, Threads: 4})
//	_ = t.Wait(ctx)
//	t, _ = s.Load(demo.MSMarco)
//	_ = t.Wait(ctx)
//
// A failed engine call inside an action writes exactly one log entry,
// "Query failed: <message>" for engine errors and "Query failed with
// unknown error" otherwise, and fails the task with the error.
package demo
