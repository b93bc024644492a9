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
	"math"
	"time"
)

// bindParams checks params against the names a statement uses and converts
// each value to its wire form.
func bindParams(names []string, params map[string]any) (map[string]any, error) {
	used := make(map[string]bool, len(names))
	bound := make(map[string]any, len(names))

	for _, name := range names {
		used[name] = true
		v, ok := params[name]
		if !ok {
			return nil, &Error{Kind: KindBinding, Message: fmt.Sprintf("parameter $%s is not bound", name)}
		}
		conv, err := bindValue(v)
		if err != nil {
			return nil, &Error{Kind: KindBinding, Message: fmt.Sprintf("parameter $%s: %v", name, err), Err: err}
		}
		bound[name] = conv
	}

	for name := range params {
		if !used[name] {
			return nil, &Error{Kind: KindBinding, Message: fmt.Sprintf("parameter $%s is not used by the statement", name)}
		}
	}
	return bound, nil
}

func bindValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, float64, int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return bindUint(uint64(x))
	case uint64:
		return bindUint(x)
	case float32:
		return float64(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case []float32:
		return x, nil
	case []float64:
		return x, nil
	case []int64:
		return x, nil
	case []int:
		out := make([]int64, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out, nil
	case []string:
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := bindValue(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func bindUint(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("value %d overflows a 64-bit integer", u)
	}
	return int64(u), nil
}
