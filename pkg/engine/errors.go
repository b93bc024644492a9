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
	"errors"
	"fmt"

	"github.com/kraklabs/graphdemo/pkg/storage"
)

// ErrorKind classifies engine errors.
type ErrorKind int

const (
	// KindInit means the database could not be opened.
	KindInit ErrorKind = iota + 1
	// KindCompile means the statement text is malformed.
	KindCompile
	// KindBinding means a prepared statement parameter is missing or has
	// an unsupported type.
	KindBinding
	// KindRuntime means the engine rejected or failed the statement.
	KindRuntime
	// KindReadOnly means a mutation was attempted on a read-only database.
	KindReadOnly
	// KindClosed means the database was already closed.
	KindClosed
	// KindCopy means a bulk copy source could not be read or converted.
	KindCopy
)

func (k ErrorKind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindCompile:
		return "compile"
	case KindBinding:
		return "binding"
	case KindRuntime:
		return "runtime"
	case KindReadOnly:
		return "read-only"
	case KindClosed:
		return "closed"
	case KindCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// Error is the structured error every engine operation returns.
// Message is the human-readable text shown to users.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var ee *Error
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ee, ok := AsError(err)
	return ok && ee.Kind == kind
}

// runtimeError wraps a backend failure. Engine messages are surfaced as-is,
// anything else is prefixed with the operation.
func runtimeError(op string, err error) *Error {
	if errors.Is(err, storage.ErrClosed) {
		return &Error{Kind: KindClosed, Message: "database is closed", Err: err}
	}
	var se *storage.EngineError
	if errors.As(err, &se) {
		return &Error{Kind: KindRuntime, Message: se.Message, Err: err}
	}
	return &Error{Kind: KindRuntime, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}
