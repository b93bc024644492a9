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

package contract

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultMaxStatementBytes is the statement size limit when
// GRAPHDEMO_MAX_STATEMENT_BYTES is unset or invalid.
const DefaultMaxStatementBytes = 1 << 20

// MaxStatementBytes returns the configured statement size limit.
func MaxStatementBytes() int {
	if v := os.Getenv("GRAPHDEMO_MAX_STATEMENT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxStatementBytes
}

type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateStatement checks a free-form statement before it is queued.
func ValidateStatement(text string) *ValidationResult {
	if limit := MaxStatementBytes(); len(text) > limit {
		return &ValidationResult{
			Message: fmt.Sprintf("statement is %d bytes, limit is %d", len(text), limit),
		}
	}
	return &ValidationResult{OK: true}
}
