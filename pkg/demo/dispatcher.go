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
	"log/slog"
	"sync"
	"time"
)

// Task is the handle of one unit of work submitted to a Dispatcher.
type Task struct {
	name string
	done chan struct{}
	err  error
}

func newTask(name string) *Task {
	return &Task{name: name, done: make(chan struct{})}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Name identifies the task in logs.
func (t *Task) Name() string { return t.name }

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's error once it has finished, nil before.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done. Giving up on the wait
// does not stop the task.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type job struct {
	task *Task
	fn   func(context.Context) error
}

// Dispatcher runs submitted work on a single goroutine, strictly in
// submission order. It owns the only path to the engine connection.
type Dispatcher struct {
	logger *slog.Logger

	mu      sync.Mutex
	pending []job
	closed  bool

	wake    chan struct{}
	stopped chan struct{}
}

// NewDispatcher starts the dispatcher goroutine.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go d.loop()
	return d
}

// Submit queues fn and returns its task. Submit never blocks. After Close
// the returned task has already failed with ErrClosed.
func (d *Dispatcher) Submit(name string, fn func(context.Context) error) *Task {
	t := newTask(name)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		t.finish(ErrClosed)
		return t
	}
	d.pending = append(d.pending, job{task: t, fn: fn})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return t
}

// Close stops accepting work, runs everything already queued and waits for
// the dispatcher goroutine to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stopped
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.stopped
}

func (d *Dispatcher) loop() {
	defer close(d.stopped)
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			closed := d.closed
			d.mu.Unlock()
			if closed {
				return
			}
			<-d.wake
			continue
		}
		j := d.pending[0]
		d.pending[0] = job{}
		d.pending = d.pending[1:]
		d.mu.Unlock()

		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	start := time.Now()
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task %s panicked: %v", j.task.name, r)
			}
		}()
		err = j.fn(context.Background())
	}()

	if err != nil {
		d.logger.Warn("dispatcher.task.failed", "task", j.task.name, "duration", time.Since(start), "err", err)
	} else {
		d.logger.Debug("dispatcher.task.done", "task", j.task.name, "duration", time.Since(start))
	}
	j.task.finish(err)
}
