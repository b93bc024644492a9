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

package storage

import (
	"errors"
	"fmt"
	"testing"
)

func TestEmbeddedBackendImplementsBackend(t *testing.T) {
	var _ Backend = &EmbeddedBackend{}
}

func TestIsEngineError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("disk full"), false},
		{"engine", &EngineError{Message: "stored relation not found"}, true},
		{"wrapped engine", fmt.Errorf("run: %w", &EngineError{Message: "parser error"}), true},
		{"closed", ErrClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEngineError(tt.err); got != tt.want {
				t.Errorf("IsEngineError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestEngineError_Error(t *testing.T) {
	err := &EngineError{Message: "Cannot find requested stored relation 'doc'"}
	if err.Error() != "Cannot find requested stored relation 'doc'" {
		t.Errorf("Error() = %q", err.Error())
	}
}
