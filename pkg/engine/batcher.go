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
	"fmt"
)

// Batch bounds for bulk imports.
const (
	defaultBatchRows = 50_000
	minBatchBytes    = 1 << 20
)

// Batcher splits converted rows into import batches targeting a row count
// and staying under a byte budget.
type Batcher struct {
	targetRows int
	maxBytes   int
}

// NewBatcher creates a new batcher.
func NewBatcher(targetRows int, maxBytes int) *Batcher {
	return &Batcher{
		targetRows: targetRows,
		maxBytes:   maxBytes,
	}
}

// batcherFor sizes batches from the buffer pool: a quarter of it per batch,
// never less than one MiB.
func batcherFor(cfg SystemConfig) *Batcher {
	budget := cfg.BufferPoolSize / 4
	if budget < minBatchBytes {
		budget = minBatchBytes
	}
	if budget > uint64(int(^uint(0)>>1)) {
		budget = uint64(int(^uint(0) >> 1))
	}
	return NewBatcher(defaultBatchRows, int(budget))
}

// Batch splits rows into batches. A single row larger than the byte budget
// is an error.
func (b *Batcher) Batch(rows [][]any) ([][][]any, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var batches [][][]any
	start := 0
	currentSize := 0

	for i, row := range rows {
		rowSize := estimateRowSize(row)
		if rowSize > b.maxBytes {
			return nil, fmt.Errorf("row %d exceeds max batch size: %d bytes (limit: %d)", i, rowSize, b.maxBytes)
		}

		count := i - start
		wouldExceedSize := currentSize+rowSize > b.maxBytes
		wouldExceedTarget := count >= b.targetRows

		// If current batch is full, start a new one
		if count > 0 && (wouldExceedSize || wouldExceedTarget) {
			batches = append(batches, rows[start:i])
			start = i
			currentSize = 0
		}
		currentSize += rowSize
	}

	batches = append(batches, rows[start:])
	return batches, nil
}

// estimateRowSize approximates the encoded size of a row.
func estimateRowSize(row []any) int {
	size := 2
	for _, v := range row {
		size += estimateValueSize(v) + 1
	}
	return size
}

func estimateValueSize(v any) int {
	switch x := v.(type) {
	case nil:
		return 4
	case string:
		return len(x) + 2
	case []float32:
		return len(x) * 12
	case []float64:
		return len(x) * 20
	case []int64:
		return len(x) * 12
	case []any:
		n := 2
		for _, e := range x {
			n += estimateValueSize(e) + 1
		}
		return n
	default:
		return 20
	}
}
