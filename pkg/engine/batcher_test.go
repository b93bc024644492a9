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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcher_Batch(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		b := NewBatcher(10, 1<<20)
		batches, err := b.Batch(nil)
		require.NoError(t, err)
		assert.Nil(t, batches)
	})

	t.Run("splits on row target", func(t *testing.T) {
		b := NewBatcher(2, 1<<20)
		rows := [][]any{{int64(1)}, {int64(2)}, {int64(3)}, {int64(4)}, {int64(5)}}

		batches, err := b.Batch(rows)
		require.NoError(t, err)
		require.Len(t, batches, 3)
		assert.Len(t, batches[0], 2)
		assert.Len(t, batches[1], 2)
		assert.Len(t, batches[2], 1)
	})

	t.Run("splits on byte budget", func(t *testing.T) {
		text := strings.Repeat("x", 100)
		rows := [][]any{{text}, {text}, {text}}
		b := NewBatcher(100, 2*estimateRowSize(rows[0]))

		batches, err := b.Batch(rows)
		require.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Len(t, batches[0], 2)
		assert.Len(t, batches[1], 1)
	})

	t.Run("row larger than budget", func(t *testing.T) {
		b := NewBatcher(10, 16)
		_, err := b.Batch([][]any{{strings.Repeat("y", 64)}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds max batch size")
	})

	t.Run("keeps every row in order", func(t *testing.T) {
		b := NewBatcher(3, 1<<20)
		var rows [][]any
		for i := 0; i < 10; i++ {
			rows = append(rows, []any{int64(i), []float32{1, 2, 3}})
		}
		batches, err := b.Batch(rows)
		require.NoError(t, err)

		var flat [][]any
		for _, batch := range batches {
			flat = append(flat, batch...)
		}
		assert.Equal(t, rows, flat)
	})
}

func TestBatcherFor(t *testing.T) {
	small := batcherFor(SystemConfig{BufferPoolSize: 1024})
	assert.Equal(t, minBatchBytes, small.maxBytes)
	assert.Equal(t, defaultBatchRows, small.targetRows)

	large := batcherFor(SystemConfig{BufferPoolSize: 64 << 20})
	assert.Equal(t, 16<<20, large.maxBytes)
}
