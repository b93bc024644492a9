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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeNPY writes a version 1.0 .npy file holding little-endian values.
func writeNPY(t *testing.T, dir, name, descr string, shape []int, values any) string {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = fmt.Sprint(d)
	}
	shapeStr := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	shapeStr += ")"

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, shapeStr)
	total := 10 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, values))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func TestReadArray_Float32Matrix(t *testing.T) {
	dir := t.TempDir()
	path := writeNPY(t, dir, "train.npy", "<f4", []int{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	a, err := ReadArray(path)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Rows())
	assert.Equal(t, 3, a.Width())
	assert.False(t, a.Scalar())
	assert.Equal(t, []float32{4, 5, 6}, a.Float32Row(1))
	assert.Equal(t, []float64{1, 2, 3}, a.Float64Row(0))
}

func TestReadArray_Int64Vector(t *testing.T) {
	dir := t.TempDir()
	path := writeNPY(t, dir, "ids.npy", "<i8", []int{3}, []int64{7, 8, 9})

	a, err := ReadArray(path)
	require.NoError(t, err)
	assert.True(t, a.Scalar())
	assert.Equal(t, 3, a.Rows())
	assert.Equal(t, 1, a.Width())

	v, ok := a.Int64(2)
	assert.True(t, ok)
	assert.Equal(t, int64(9), v)
}

func TestArray_Int64FromFloat(t *testing.T) {
	a := &Array{Shape: []int{2}, F64: []float64{3, 2.5}}

	v, ok := a.Int64(0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok = a.Int64(1)
	assert.False(t, ok)
}

func TestArray_Float32RowConverts(t *testing.T) {
	a := &Array{Shape: []int{1, 2}, F64: []float64{0.5, math.Pi}}
	assert.Equal(t, []float32{0.5, float32(math.Pi)}, a.Float32Row(0))
}

func TestReadArray_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadArray(filepath.Join(dir, "missing.npy"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.npy")
	require.NoError(t, os.WriteFile(bad, []byte("not numpy"), 0600))
	_, err = ReadArray(bad)
	assert.Error(t, err)

	u8 := writeNPY(t, dir, "bytes.npy", "|u1", []int{2}, []uint8{1, 2})
	_, err = ReadArray(u8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dtype")
}
