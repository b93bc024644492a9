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
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type statementKind int

const (
	kindScript statementKind = iota
	kindCheckpoint
	kindCopy
)

func (k statementKind) String() string {
	switch k {
	case kindCheckpoint:
		return "checkpoint"
	case kindCopy:
		return "copy"
	default:
		return "script"
	}
}

// statement is a classified statement ready to run.
type statement struct {
	text     string
	kind     statementKind
	mutating bool
	params   []string
	copy     *copySpec
}

var (
	checkpointRe = regexp.MustCompile(`(?i)^CHECKPOINT\s*;?$`)
	copyHeadRe   = regexp.MustCompile(`(?is)^COPY\s+([A-Za-z_][A-Za-z0-9_]*)\s+FROM\s+(.+)$`)
	paramRe      = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

	// Script operators that write stored relations or indices.
	mutatingRe = regexp.MustCompile(`(?m)(:(create|replace|put|rm|insert|update|delete|ensure|ensure_not)\b)|(::(remove|rename|index|hnsw|fts|lsh|set_triggers|access_level|compact)\b)`)
)

// parseStatement classifies text and checks it is structurally sound.
func parseStatement(text string) (*statement, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &Error{Kind: KindCompile, Message: "statement is empty"}
	}

	if checkpointRe.MatchString(trimmed) {
		return &statement{text: trimmed, kind: kindCheckpoint}, nil
	}

	if m := copyHeadRe.FindStringSubmatch(trimmed); m != nil {
		spec, err := parseCopy(m[1], strings.TrimSuffix(strings.TrimSpace(m[2]), ";"))
		if err != nil {
			return nil, err
		}
		return &statement{text: trimmed, kind: kindCopy, mutating: true, copy: spec}, nil
	}

	masked, err := maskLiterals(trimmed)
	if err != nil {
		return nil, err
	}
	if err := checkBalanced(masked); err != nil {
		return nil, err
	}

	return &statement{
		text:     trimmed,
		kind:     kindScript,
		mutating: mutatingRe.MatchString(masked),
		params:   extractParams(masked),
	}, nil
}

// maskLiterals blanks string literals and # comments so that keywords,
// brackets and parameters inside them are ignored. Offsets are preserved.
func maskLiterals(text string) (string, error) {
	out := []rune(text)
	var quote rune
	start := 0
	inComment := false

	for i := 0; i < len(out); i++ {
		r := out[i]
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			} else {
				out[i] = ' '
			}
		case quote != 0:
			if r == '\\' && i+1 < len(out) {
				out[i], out[i+1] = ' ', ' '
				i++
				continue
			}
			if r == quote {
				quote = 0
				continue
			}
			if r != '\n' {
				out[i] = ' '
			}
		case r == '"' || r == '\'':
			quote = r
			start = i
		case r == '#':
			inComment = true
			out[i] = ' '
		}
	}
	if quote != 0 {
		return "", &Error{Kind: KindCompile, Message: fmt.Sprintf("unterminated string literal at offset %d", start)}
	}
	return string(out), nil
}

func checkBalanced(masked string) error {
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	type open struct {
		r   rune
		pos int
	}
	var stack []open

	for i, r := range []rune(masked) {
		switch r {
		case '(', '[', '{':
			stack = append(stack, open{r, i})
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1].r != pairs[r] {
				return &Error{Kind: KindCompile, Message: fmt.Sprintf("unexpected %q at offset %d", r, i)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &Error{Kind: KindCompile, Message: fmt.Sprintf("unclosed %q at offset %d", top.r, top.pos)}
	}
	return nil
}

// extractParams returns the distinct $names in order of first use.
func extractParams(masked string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range paramRe.FindAllStringSubmatch(masked, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Source formats understood by COPY.
const (
	formatCSV = "csv"
	formatNPY = "npy"
)

// copySpec is a parsed COPY statement.
type copySpec struct {
	relation string
	files    []string
	byColumn bool
	format   string
	delim    rune
	header   bool
}

// parseCopy parses the part of a COPY statement after FROM.
func parseCopy(relation, rest string) (*copySpec, error) {
	p := &copyParser{src: []rune(rest)}
	spec := &copySpec{relation: relation, delim: ','}

	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		for {
			p.skipSpace()
			s, err := p.quoted()
			if err != nil {
				return nil, err
			}
			spec.files = append(spec.files, s)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() != ')' {
				return nil, p.errorf("expected ',' or ')' in file list")
			}
			p.pos++
			break
		}
		p.skipSpace()
		if !p.keyword("BY") || !p.keyword("COLUMN") {
			return nil, p.errorf("file list must be followed by BY COLUMN")
		}
		spec.byColumn = true
		spec.format = formatNPY
	} else {
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		spec.files = []string{s}
		spec.format = formatFromExt(s)
		if strings.EqualFold(filepath.Ext(s), ".tsv") {
			spec.delim = '\t'
		}
		p.skipSpace()
		if p.peek() == '(' {
			if err := p.options(spec); err != nil {
				return nil, err
			}
		}
	}

	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected trailing input")
	}
	if spec.byColumn {
		for _, f := range spec.files {
			if formatFromExt(f) != formatNPY {
				return nil, &Error{Kind: KindCompile, Message: fmt.Sprintf("BY COLUMN expects .npy files, got %s", f)}
			}
		}
	} else if spec.format != formatCSV {
		return nil, &Error{Kind: KindCompile, Message: fmt.Sprintf("unsupported copy source %s", spec.files[0])}
	}
	return spec, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return formatNPY
	case ".csv", ".tsv", ".txt":
		return formatCSV
	default:
		return ""
	}
}

type copyParser struct {
	src []rune
	pos int
}

func (p *copyParser) done() bool { return p.pos >= len(p.src) }

func (p *copyParser) peek() rune {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *copyParser) skipSpace() {
	for !p.done() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *copyParser) errorf(format string, args ...any) error {
	return &Error{Kind: KindCompile, Message: fmt.Sprintf("COPY: "+format+" at offset %d", append(args, p.pos)...)}
}

func (p *copyParser) keyword(word string) bool {
	p.skipSpace()
	end := p.pos + len(word)
	if end > len(p.src) || !strings.EqualFold(string(p.src[p.pos:end]), word) {
		return false
	}
	if end < len(p.src) && (unicode.IsLetter(p.src[end]) || p.src[end] == '_') {
		return false
	}
	p.pos = end
	return true
}

// quoted reads a '...' or "..." literal with backslash escapes.
func (p *copyParser) quoted() (string, error) {
	q := p.peek()
	if q != '\'' && q != '"' {
		return "", p.errorf("expected quoted string")
	}
	p.pos++
	var b strings.Builder
	for !p.done() {
		r := p.src[p.pos]
		p.pos++
		switch {
		case r == q:
			return b.String(), nil
		case r == '\\' && !p.done():
			e := p.src[p.pos]
			p.pos++
			switch e {
			case 't':
				b.WriteRune('\t')
			case 'n':
				b.WriteRune('\n')
			default:
				b.WriteRune(e)
			}
		default:
			b.WriteRune(r)
		}
	}
	return "", p.errorf("unterminated string literal")
}

// options reads "(key=value, ...)".
func (p *copyParser) options(spec *copySpec) error {
	p.pos++ // (
	for {
		p.skipSpace()
		start := p.pos
		for !p.done() && (unicode.IsLetter(p.peek()) || p.peek() == '_') {
			p.pos++
		}
		key := strings.ToLower(string(p.src[start:p.pos]))
		if key == "" {
			return p.errorf("expected option name")
		}
		p.skipSpace()
		if p.peek() != '=' {
			return p.errorf("expected '=' after %s", key)
		}
		p.pos++
		p.skipSpace()

		var val string
		if p.peek() == '\'' || p.peek() == '"' {
			s, err := p.quoted()
			if err != nil {
				return err
			}
			val = s
		} else {
			start := p.pos
			for !p.done() && p.peek() != ',' && p.peek() != ')' && !unicode.IsSpace(p.peek()) {
				p.pos++
			}
			val = string(p.src[start:p.pos])
		}

		if err := applyCopyOption(spec, key, val); err != nil {
			return err
		}

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return nil
		default:
			return p.errorf("expected ',' or ')' in options")
		}
	}
}

func applyCopyOption(spec *copySpec, key, val string) error {
	switch key {
	case "file_format", "format":
		f := strings.ToLower(val)
		if f == "tsv" {
			f = formatCSV
			spec.delim = '\t'
		}
		if f != formatCSV {
			return &Error{Kind: KindCompile, Message: fmt.Sprintf("COPY: unsupported file_format %q", val)}
		}
		spec.format = f
	case "delim", "delimiter":
		r := []rune(val)
		if len(r) != 1 {
			return &Error{Kind: KindCompile, Message: fmt.Sprintf("COPY: delimiter must be one character, got %q", val)}
		}
		spec.delim = r[0]
	case "header":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return &Error{Kind: KindCompile, Message: fmt.Sprintf("COPY: header must be true or false, got %q", val)}
		}
		spec.header = b
	default:
		return &Error{Kind: KindCompile, Message: fmt.Sprintf("COPY: unknown option %q", key)}
	}
	return nil
}
