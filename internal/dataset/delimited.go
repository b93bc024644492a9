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

package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DelimitedReader streams records from a delimited text file.
type DelimitedReader struct {
	f    *os.File
	r    *csv.Reader
	line int
}

// OpenDelimited opens path for record-at-a-time reading. Quotes are not
// interpreted when delim is a tab, matching TSV exports.
func OpenDelimited(path string, delim rune) (*DelimitedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.ReuseRecord = false
	if delim == '\t' {
		r.LazyQuotes = true
	}
	return &DelimitedReader{f: f, r: r}, nil
}

// Read returns the next record, or io.EOF.
func (d *DelimitedReader) Read() ([]string, error) {
	rec, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("line %d: %w", d.line+1, err)
	}
	d.line++
	return rec, nil
}

// Line is the number of records read so far.
func (d *DelimitedReader) Line() int { return d.line }

// Close closes the underlying file.
func (d *DelimitedReader) Close() error { return d.f.Close() }

// ReadChunk skips the first skip lines of path and returns up to limit of
// the lines that follow, without their line terminators. A file shorter than
// skip yields an empty chunk.
func ReadChunk(path string, skip, limit int) ([]string, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid chunk bounds skip=%d limit=%d", skip, limit)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	lines := make([]string, 0, limit)
	n := 0
	for sc.Scan() {
		n++
		if n <= skip {
			continue
		}
		if len(lines) >= limit {
			break
		}
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
