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
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Actions reports which setup actions are currently available.
type Actions struct {
	Init  bool
	Load  map[Dataset]bool
	Bench map[Dataset]bool
}

// Setup is the configuration screen: two text fields and the actions they
// unlock.
type Setup struct {
	session *Session
}

// NewSetup creates the setup controller for s.
func NewSetup(s *Session) *Setup {
	return &Setup{session: s}
}

// ParseSettings parses the memory budget (MB) and thread count fields.
func ParseSettings(bufferPoolMB, threads string) (Settings, error) {
	bm, err := parsePositive(bufferPoolMB)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: memory budget %q: %v", ErrInvalidSettings, bufferPoolMB, err)
	}
	n, err := parsePositive(threads)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: thread count %q: %v", ErrInvalidSettings, threads, err)
	}
	return Settings{BufferPoolMB: bm, Threads: n}, nil
}

func parsePositive(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a whole number")
	}
	if n == 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return n, nil
}

// Submit parses both fields and initializes the engine.
func (s *Setup) Submit(bufferPoolMB, threads string) (*Task, error) {
	settings, err := ParseSettings(bufferPoolMB, threads)
	if err != nil {
		return nil, err
	}
	return s.session.Init(settings)
}

// Enabled reports which actions are available: loads once Init has
// completed, each benchmark once its dataset has loaded.
func (s *Setup) Enabled() Actions {
	st := s.session.Status()
	a := Actions{
		Init:  !s.session.initPending() && !st.Initialized,
		Load:  make(map[Dataset]bool),
		Bench: make(map[Dataset]bool),
	}
	loaded := make(map[Dataset]bool, len(st.Loaded))
	for _, d := range st.Loaded {
		loaded[d] = true
	}
	for _, d := range Datasets() {
		a.Load[d] = st.Initialized
		a.Bench[d] = loaded[d]
	}
	return a
}

func (s *Session) initPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initRequested
}

// QueryPad is the free-form query screen: a text buffer with run and clear.
type QueryPad struct {
	session *Session

	mu   sync.Mutex
	text strings.Builder
}

// NewQueryPad creates a query pad that runs statements on s.
func NewQueryPad(s *Session) *QueryPad {
	return &QueryPad{session: s}
}

// SetText replaces the buffer.
func (p *QueryPad) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text.Reset()
	p.text.WriteString(text)
}

// AppendLine adds a line to the buffer.
func (p *QueryPad) AppendLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.text.Len() > 0 {
		p.text.WriteString("\n")
	}
	p.text.WriteString(line)
}

// Text returns the buffer.
func (p *QueryPad) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text.String()
}

// Clear empties the buffer.
func (p *QueryPad) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text.Reset()
}

// Run executes the buffer. The buffer is kept.
func (p *QueryPad) Run() (*Task, error) {
	text := strings.TrimSpace(p.Text())
	if text == "" {
		return nil, ErrEmptyQuery
	}
	return p.session.ExecuteQuery(text)
}
