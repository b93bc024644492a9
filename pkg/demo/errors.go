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

package demo

import (
	"errors"
	"fmt"

	"github.com/kraklabs/graphdemo/pkg/engine"
)

var (
	// ErrNotInitialized is returned by actions that need an open engine
	// before Init has completed.
	ErrNotInitialized = errors.New("engine is not initialized")

	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("engine is already initialized")

	// ErrNotLoaded is returned by a benchmark whose dataset has not been
	// loaded successfully.
	ErrNotLoaded = errors.New("dataset is not loaded")

	// ErrInvalidSettings is returned for a zero memory budget or thread count.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrEmptyQuery is returned when running an empty query pad.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrClosed is returned for work submitted after Close.
	ErrClosed = errors.New("session is closed")
)

// failureLine is the single log entry written for a failed action.
func failureLine(err error) string {
	if ee, ok := engine.AsError(err); ok {
		return fmt.Sprintf("Query failed: %s", ee.Message)
	}
	return "Query failed with unknown error"
}

// IsGating reports whether err is a precondition failure rather than a
// failed engine call.
func IsGating(err error) bool {
	return errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrAlreadyInitialized) ||
		errors.Is(err, ErrNotLoaded) ||
		errors.Is(err, ErrClosed)
}
