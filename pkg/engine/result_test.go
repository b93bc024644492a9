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

package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryResult_String(t *testing.T) {
	r := &QueryResult{
		Headers: []string{"id", "content"},
		Rows: [][]any{
			{float64(1), "first line\nsecond line"},
			{float64(2), nil},
		},
	}

	out := r.String()
	lines := strings.Split(out, "\n")
	assert.Equal(t, "id   content", strings.TrimRight(lines[0], " "))
	assert.Contains(t, lines[1], "---")
	assert.Contains(t, out, "first line second line")
	assert.Contains(t, out, "null")
	assert.True(t, strings.HasSuffix(out, "(2 tuples)"))
}

func TestQueryResult_StringTruncatesLongCells(t *testing.T) {
	r := &QueryResult{Headers: []string{"c"}, Rows: [][]any{{strings.Repeat("a", 100)}}}
	assert.Contains(t, r.String(), strings.Repeat("a", 57)+"...")
}

func TestQueryResult_Times(t *testing.T) {
	r := &QueryResult{compileTime: 1500 * time.Microsecond, execTime: 3 * time.Millisecond}
	assert.InDelta(t, 1.5, r.CompilingTime(), 1e-9)
	assert.InDelta(t, 3.0, r.ExecutionTime(), 1e-9)
}

func TestQueryResult_Scores(t *testing.T) {
	tests := []struct {
		name string
		r    *QueryResult
		want []float64
	}{
		{
			name: "fts score",
			r:    &QueryResult{Headers: []string{"id", "score"}, Rows: [][]any{{float64(1), 2.5}, {float64(2), 1.25}}},
			want: []float64{2.5, 1.25},
		},
		{
			name: "vector distance",
			r:    &QueryResult{Headers: []string{"id", "distance"}, Rows: [][]any{{float64(1), 0.1}}},
			want: []float64{0.1},
		},
		{
			name: "no ranking column",
			r:    &QueryResult{Headers: []string{"id"}, Rows: [][]any{{float64(1)}}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Scores())
		})
	}
}

func TestQueryResult_Column(t *testing.T) {
	r := &QueryResult{Headers: []string{"a", "b"}, Rows: [][]any{{1, 2}, {3, 4}}}

	col, ok := r.Column("b")
	assert.True(t, ok)
	assert.Equal(t, []any{2, 4}, col)

	_, ok = r.Column("z")
	assert.False(t, ok)
	assert.Equal(t, 2, r.NumTuples())
}
