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

// Package ui holds the terminal styling shared by graphdemo commands.
//
// All output goes through color.Output so that tests can capture it and
// --no-color / NO_COLOR disable styling in one place.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Red marks failures.
	Red = color.New(color.FgRed)

	// Yellow marks warnings.
	Yellow = color.New(color.FgYellow)

	// Green marks completed actions.
	Green = color.New(color.FgGreen)

	// Cyan marks timings and counts.
	Cyan = color.New(color.FgCyan)

	// Bold marks headers and labels.
	Bold = color.New(color.Bold)

	// Dim marks separators and paths.
	Dim = color.New(color.Faint)
)

// InitColors turns styling on or off globally.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

func Success(msg string) {
	_, _ = Green.Fprintln(color.Output, "✓ "+msg)
}

func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

func Warning(msg string) {
	_, _ = Yellow.Fprintln(color.Output, "⚠ "+msg)
}

func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

func Error(msg string) {
	_, _ = Red.Fprintln(color.Output, "✗ "+msg)
}

func Info(msg string) {
	_, _ = Cyan.Fprintln(color.Output, "ℹ "+msg)
}

func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Header prints text underlined with '='.
func Header(text string) {
	_, _ = Bold.Fprintln(color.Output, text)
	_, _ = fmt.Fprintln(color.Output, strings.Repeat("=", len(text)))
}

func Label(text string) string {
	return Bold.Sprint(text)
}

func DimText(text string) string {
	return Dim.Sprint(text)
}

func CountText(count int) string {
	return Cyan.Sprint(count)
}

// Entry styles one session log entry for the terminal. Multi-line entries
// (result tables) are styled line by line.
func Entry(entry string) string {
	lines := strings.Split(entry, "\n")
	for i, line := range lines {
		lines[i] = entryLine(line)
	}
	return strings.Join(lines, "\n")
}

func entryLine(line string) string {
	switch {
	case line == "":
		return line
	case strings.HasPrefix(line, "Query failed"):
		return Red.Sprint(line)
	case strings.Trim(line, "-") == "":
		return Dim.Sprint(line)
	case strings.HasPrefix(line, "Executing query: "), strings.HasPrefix(line, "Preparing query: "):
		i := strings.Index(line, ": ") + 2
		return Bold.Sprint(line[:i]) + line[i:]
	case strings.HasPrefix(line, "Execution time: "),
		strings.HasPrefix(line, "Average "),
		strings.HasPrefix(line, "Total "):
		return Cyan.Sprint(line)
	default:
		return line
	}
}
