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
	"io"
	"strings"
	"sync"
)

// Separator closes each block of related log entries.
var Separator = strings.Repeat("-", 40)

// Log is the append-only scrollback every action reports into. Each entry
// is also echoed to the output writer, if one is set.
type Log struct {
	mu      sync.Mutex
	entries []string
	out     io.Writer
}

// NewLog creates a log that echoes to out. out may be nil.
func NewLog(out io.Writer) *Log {
	return &Log{out: out}
}

// Append adds one entry. An entry may span several lines.
func (l *Log) Append(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if l.out != nil {
		_, _ = fmt.Fprintln(l.out, entry)
	}
}

// Appendf formats and adds one entry.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the scrollback.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Len is the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear empties the scrollback.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// String joins every entry with newlines.
func (l *Log) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.entries, "\n")
}
