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
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio/npy"
)

// Array is a numeric NumPy array held in memory. Exactly one of the typed
// slices is set, matching the file's dtype.
type Array struct {
	Shape []int
	F32   []float32
	F64   []float64
	I64   []int64
	I32   []int32
}

// ReadArray loads an .npy file. Supported dtypes are f4, f8, i4 and i8.
func ReadArray(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r, err := npy.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read npy header %s: %w", path, err)
	}
	if r.Header.Descr.Fortran {
		return nil, fmt.Errorf("%s: fortran-ordered arrays are not supported", path)
	}

	a := &Array{Shape: append([]int(nil), r.Header.Descr.Shape...)}
	dtype := strings.TrimLeft(r.Header.Descr.Type, "<>|=")
	switch dtype {
	case "f4":
		err = r.Read(&a.F32)
	case "f8":
		err = r.Read(&a.F64)
	case "i4":
		err = r.Read(&a.I32)
	case "i8":
		err = r.Read(&a.I64)
	default:
		return nil, fmt.Errorf("%s: unsupported dtype %q", path, r.Header.Descr.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("read npy data %s: %w", path, err)
	}
	if a.len() != a.Rows()*a.Width() {
		return nil, fmt.Errorf("%s: %d values do not match shape %v", path, a.len(), a.Shape)
	}
	return a, nil
}

func (a *Array) len() int {
	switch {
	case a.F32 != nil:
		return len(a.F32)
	case a.F64 != nil:
		return len(a.F64)
	case a.I32 != nil:
		return len(a.I32)
	default:
		return len(a.I64)
	}
}

// Rows is the length of the first dimension.
func (a *Array) Rows() int {
	if len(a.Shape) == 0 {
		return 1
	}
	return a.Shape[0]
}

// Width is the number of values per row.
func (a *Array) Width() int {
	w := 1
	for _, d := range a.Shape[min(1, len(a.Shape)):] {
		w *= d
	}
	return w
}

// Scalar reports whether each row holds a single value.
func (a *Array) Scalar() bool {
	return len(a.Shape) <= 1
}

// Float64 returns the value at flat index i.
func (a *Array) Float64(i int) float64 {
	switch {
	case a.F32 != nil:
		return float64(a.F32[i])
	case a.F64 != nil:
		return a.F64[i]
	case a.I32 != nil:
		return float64(a.I32[i])
	default:
		return float64(a.I64[i])
	}
}

// Int64 returns the value at flat index i. ok is false for a float that is
// not a whole number.
func (a *Array) Int64(i int) (v int64, ok bool) {
	switch {
	case a.I64 != nil:
		return a.I64[i], true
	case a.I32 != nil:
		return int64(a.I32[i]), true
	default:
		f := a.Float64(i)
		return int64(f), f == float64(int64(f))
	}
}

// Float32Row returns row i as float32 values.
func (a *Array) Float32Row(i int) []float32 {
	w := a.Width()
	if a.F32 != nil {
		return a.F32[i*w : (i+1)*w]
	}
	row := make([]float32, w)
	for j := range row {
		row[j] = float32(a.Float64(i*w + j))
	}
	return row
}

// Float64Row returns row i as float64 values.
func (a *Array) Float64Row(i int) []float64 {
	w := a.Width()
	if a.F64 != nil {
		return a.F64[i*w : (i+1)*w]
	}
	row := make([]float64, w)
	for j := range row {
		row[j] = a.Float64(i*w + j)
	}
	return row
}
