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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line%d\n", i)
	}
	path := filepath.Join(t.TempDir(), "lines.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
	return path
}

func TestReadChunk(t *testing.T) {
	path := writeLines(t, 10)

	tests := []struct {
		name  string
		skip  int
		limit int
		want  []string
	}{
		{"head", 0, 2, []string{"line1", "line2"}},
		{"middle", 3, 3, []string{"line4", "line5", "line6"}},
		{"past end", 8, 5, []string{"line9", "line10"}},
		{"skip everything", 20, 5, []string{}},
		{"zero limit", 0, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadChunk(path, tt.skip, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadChunk_Errors(t *testing.T) {
	_, err := ReadChunk(filepath.Join(t.TempDir(), "nope.csv"), 0, 1)
	assert.Error(t, err)

	_, err = ReadChunk(writeLines(t, 1), -1, 1)
	assert.Error(t, err)
}

func TestDelimitedReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.tsv")
	content := "1\tsay \"hello\" there\n2\tsecond\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	r, err := OpenDelimited(path, '\t')
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", `say "hello" there`}, rec)

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "second"}, rec)
	assert.Equal(t, 2, r.Line())

	_, err = r.Read()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestDelimitedReader_Pipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.csv")
	require.NoError(t, os.WriteFile(path, []byte("id|browser\n1|Firefox\n"), 0600))

	r, err := OpenDelimited(path, '|')
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	header, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "browser"}, header)
}
