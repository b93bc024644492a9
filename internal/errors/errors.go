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

// Package errors defines the errors the graphdemo CLI shows to users.
//
// A UserError carries a message, the likely cause, a suggested fix and the
// process exit code. Classify turns engine and session errors into
// UserErrors so every command reports failures the same way:
//
//	Error: Query failed
//	Cause: unexpected ']' at offset 12
//	Fix:   Check the statement syntax
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/graphdemo/pkg/demo"
	"github.com/kraklabs/graphdemo/pkg/engine"
	"github.com/kraklabs/graphdemo/pkg/storage"
)

// Exit codes. 10 signals a bug that should be reported.
const (
	ExitSuccess    = 0
	ExitConfig     = 1
	ExitEngine     = 2
	ExitNetwork    = 3
	ExitInput      = 4
	ExitPermission = 5
	ExitNotFound   = 6
	ExitInternal   = 10
)

// UserError is an error with enough context for a user to act on it.
type UserError struct {
	// Message describes what went wrong.
	Message string

	// Cause explains why, when known.
	Cause string

	// Fix suggests what to do next.
	Fix string

	ExitCode int

	// Err is the wrapped error, if any.
	Err error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError reports an unreadable or invalid configuration.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewEngineError reports a failure inside the graph engine.
func NewEngineError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitEngine, msg, cause, fix, err)
}

// NewNetworkError reports a listener or connection failure.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError reports bad arguments.
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// Classify maps err to a UserError. UserErrors pass through unchanged and
// nil stays nil.
func Classify(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue
	}

	switch {
	case stderrors.Is(err, demo.ErrInvalidSettings):
		return newUserError(ExitInput, "Invalid settings", causeOf(err), "Memory budget (MB) and thread count must be whole numbers greater than zero", err)
	case stderrors.Is(err, demo.ErrNotInitialized):
		return newUserError(ExitInput, "Engine is not initialized", "", "Run 'init <buffer_pool_mb> <threads>' first", err)
	case stderrors.Is(err, demo.ErrAlreadyInitialized):
		return newUserError(ExitInput, "Engine is already initialized", "", "Start a new shell to use different settings", err)
	case stderrors.Is(err, demo.ErrNotLoaded):
		return newUserError(ExitInput, "Dataset is not loaded", causeOf(err), "Run 'load <dataset>' before its benchmark", err)
	case stderrors.Is(err, demo.ErrEmptyQuery):
		return newUserError(ExitInput, "Query is empty", "", "Type a statement before running it", err)
	case stderrors.Is(err, storage.ErrUnavailable):
		return newUserError(ExitEngine, "Graph engine is not available", "This binary was built without the embedded engine", "Rebuild with: go build -tags cozodb ./cmd/graphdemo", err)
	case stderrors.Is(err, os.ErrPermission):
		return newUserError(ExitPermission, "Permission denied", err.Error(), "Check the permissions of the session and dataset directories", err)
	case stderrors.Is(err, os.ErrNotExist):
		return newUserError(ExitNotFound, "File not found", err.Error(), "Check dataset_dir and that the dataset files are present", err)
	}

	if ee, ok := engine.AsError(err); ok {
		return classifyEngine(ee, err)
	}
	return newUserError(ExitInternal, "Unexpected error", err.Error(), "Re-run with --debug and report the output", err)
}

func classifyEngine(ee *engine.Error, err error) *UserError {
	switch ee.Kind {
	case engine.KindInit:
		return newUserError(ExitEngine, "Cannot open the database", ee.Message, "Check temp_dir, the storage engine and the memory budget", err)
	case engine.KindCompile, engine.KindBinding:
		return newUserError(ExitInput, "Query failed", ee.Message, "Check the statement syntax and its parameters", err)
	case engine.KindReadOnly:
		return newUserError(ExitEngine, "Database is read-only", ee.Message, "Open the session read-write to modify it", err)
	case engine.KindCopy:
		return newUserError(ExitInput, "Copy failed", ee.Message, "Check the source files and the relation's column types", err)
	default:
		return newUserError(ExitEngine, "Query failed", ee.Message, "", err)
	}
}

// causeOf returns the text after the sentinel prefix of a wrapped error.
func causeOf(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return ""
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error in the Error/Cause/Fix layout. Colors are
// skipped when noColor is set or NO_COLOR is present in the environment.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")
	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// ErrorJSON is the --json rendering of a UserError.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w and returns the exit code to use.
func Report(w io.Writer, err error, jsonOutput, noColor bool) int {
	ue := Classify(err)
	if ue == nil {
		return ExitSuccess
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		_, _ = fmt.Fprint(w, ue.Format(noColor))
	}
	return ue.ExitCode
}

// FatalError reports err on stderr and exits. A nil err is a no-op.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput, false))
}
