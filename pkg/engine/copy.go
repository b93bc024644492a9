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
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/graphdemo/internal/dataset"
)

type columnKind int

const (
	colAny columnKind = iota
	colInt
	colFloat
	colString
	colBool
	colVector
)

// columnType is a stored relation column type as reported by ::columns.
type columnType struct {
	kind     columnKind
	nullable bool
	elem     string // F32 or F64 for vectors
	dim      int
	raw      string
}

type column struct {
	name string
	typ  columnType
}

var vectorTypeRe = regexp.MustCompile(`^<\s*(F32|F64)\s*;\s*(\d+)\s*>$`)

func parseColumnType(s string) columnType {
	t := columnType{raw: s}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "?") {
		t.nullable = true
		s = strings.TrimSuffix(s, "?")
	}
	switch s {
	case "Int":
		t.kind = colInt
	case "Float":
		t.kind = colFloat
	case "String":
		t.kind = colString
	case "Bool":
		t.kind = colBool
	default:
		if m := vectorTypeRe.FindStringSubmatch(s); m != nil {
			t.kind = colVector
			t.elem = m[1]
			t.dim, _ = strconv.Atoi(m[2])
		}
	}
	return t
}

// relationColumns looks up the columns of a stored relation in declaration
// order, keys first.
func (c *Connection) relationColumns(ctx context.Context, relation string) ([]column, error) {
	res, err := c.db.backend.RunReadOnly(ctx, "::columns "+relation, nil)
	if err != nil {
		return nil, runtimeError("columns", err)
	}
	nameIdx, typeIdx := -1, -1
	for i, h := range res.Headers {
		switch h {
		case "column":
			nameIdx = i
		case "type":
			typeIdx = i
		}
	}
	if nameIdx < 0 || typeIdx < 0 {
		return nil, &Error{Kind: KindRuntime, Message: fmt.Sprintf("unexpected ::columns output for %s: %v", relation, res.Headers)}
	}

	cols := make([]column, 0, len(res.Rows))
	for _, row := range res.Rows {
		name, _ := row[nameIdx].(string)
		typ, _ := row[typeIdx].(string)
		cols = append(cols, column{name: name, typ: parseColumnType(typ)})
	}
	if len(cols) == 0 {
		return nil, &Error{Kind: KindCopy, Message: fmt.Sprintf("relation %s has no columns", relation)}
	}
	return cols, nil
}

// copy runs a COPY statement and reports the number of imported tuples.
// Batches imported before a failure stay imported.
func (c *Connection) copy(ctx context.Context, spec *copySpec) (*QueryResult, error) {
	cols, err := c.relationColumns(ctx, spec.relation)
	if err != nil {
		return nil, err
	}

	var n int
	if spec.byColumn {
		n, err = c.copyColumns(ctx, spec, cols)
	} else {
		n, err = c.copyDelimited(ctx, spec, cols)
	}
	if err != nil {
		return nil, err
	}

	engMetrics.init()
	engMetrics.copiedTuples.Add(float64(n))
	c.db.logger.Info("copy.done", "relation", spec.relation, "tuples", n, "files", spec.files)

	return &QueryResult{
		Headers: []string{"result"},
		Rows:    [][]any{{fmt.Sprintf("%d tuples have been copied to the %s table.", n, spec.relation)}},
	}, nil
}

func copyError(format string, args ...any) *Error {
	return &Error{Kind: KindCopy, Message: fmt.Sprintf(format, args...)}
}

func (c *Connection) copyDelimited(ctx context.Context, spec *copySpec, cols []column) (int, error) {
	r, err := dataset.OpenDelimited(spec.files[0], spec.delim)
	if err != nil {
		return 0, &Error{Kind: KindCopy, Message: err.Error(), Err: err}
	}
	defer func() { _ = r.Close() }()

	if spec.header {
		if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
			return 0, &Error{Kind: KindCopy, Message: err.Error(), Err: err}
		}
	}

	total := 0
	chunk := make([][]string, 0, defaultBatchRows)
	firstLine := r.Line() + 1

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		base := firstLine
		rows, err := c.convertParallel(ctx, len(chunk), func(i int) ([]any, error) {
			rec := chunk[i]
			if len(rec) != len(cols) {
				return nil, copyError("%s line %d: expected %d columns, got %d", spec.files[0], base+i, len(cols), len(rec))
			}
			row := make([]any, len(cols))
			for j, col := range cols {
				v, err := convertText(col.typ, rec[j])
				if err != nil {
					return nil, copyError("%s line %d column %s: %v", spec.files[0], base+i, col.name, err)
				}
				row[j] = v
			}
			return row, nil
		})
		if err != nil {
			return err
		}
		if err := c.importRows(ctx, spec.relation, cols, rows); err != nil {
			return err
		}
		total += len(rows)
		firstLine += len(chunk)
		chunk = chunk[:0]
		return nil
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, &Error{Kind: KindCopy, Message: fmt.Sprintf("%s: %v", spec.files[0], err), Err: err}
		}
		chunk = append(chunk, rec)
		if len(chunk) == cap(chunk) {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func (c *Connection) copyColumns(ctx context.Context, spec *copySpec, cols []column) (int, error) {
	if len(spec.files) != len(cols) {
		return 0, copyError("COPY %s: %d files for %d columns", spec.relation, len(spec.files), len(cols))
	}

	arrays := make([]*dataset.Array, len(spec.files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.workers(len(spec.files)))
	for i, path := range spec.files {
		g.Go(func() error {
			a, err := dataset.ReadArray(path)
			if err != nil {
				return &Error{Kind: KindCopy, Message: err.Error(), Err: err}
			}
			arrays[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	rows := arrays[0].Rows()
	for j, a := range arrays {
		if a.Rows() != rows {
			return 0, copyError("%s has %d rows, %s has %d", spec.files[j], a.Rows(), spec.files[0], rows)
		}
		t := cols[j].typ
		switch {
		case t.kind == colVector && (a.Scalar() || a.Width() != t.dim):
			return 0, copyError("%s: rows of width %d do not fit column %s %s", spec.files[j], a.Width(), cols[j].name, t.raw)
		case t.kind != colVector && !a.Scalar():
			return 0, copyError("%s: %d-dimensional array does not fit scalar column %s %s", spec.files[j], len(a.Shape), cols[j].name, t.raw)
		}
	}

	total := 0
	for base := 0; base < rows; base += defaultBatchRows {
		n := min(defaultBatchRows, rows-base)
		converted, err := c.convertParallel(ctx, n, func(i int) ([]any, error) {
			row := make([]any, len(cols))
			for j, col := range cols {
				v, err := arrayValue(col.typ, arrays[j], base+i)
				if err != nil {
					return nil, copyError("%s row %d column %s: %v", spec.files[j], base+i, col.name, err)
				}
				row[j] = v
			}
			return row, nil
		})
		if err != nil {
			return total, err
		}
		if err := c.importRows(ctx, spec.relation, cols, converted); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Connection) workers(n int) int {
	w := int(min(c.MaxNumThreadsForExec(), uint64(max(n, 1))))
	return max(w, 1)
}

// convertParallel converts n rows, splitting the range evenly over the
// connection's threads.
func (c *Connection) convertParallel(ctx context.Context, n int, convert func(i int) ([]any, error)) ([][]any, error) {
	out := make([][]any, n)
	workers := c.workers(n)
	per := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += per {
		hi := min(lo+per, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				row, err := convert(i)
				if err != nil {
					return err
				}
				out[i] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, runtimeError("copy", err)
	}
	return out, nil
}

func (c *Connection) importRows(ctx context.Context, relation string, cols []column, rows [][]any) error {
	batches, err := batcherFor(c.db.config).Batch(rows)
	if err != nil {
		return &Error{Kind: KindCopy, Message: err.Error(), Err: err}
	}
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.name
	}
	for _, b := range batches {
		if err := c.db.backend.Import(ctx, relation, headers, b); err != nil {
			return runtimeError("import", err)
		}
		engMetrics.init()
		engMetrics.copyBatches.Inc()
		c.db.logger.Debug("copy.batch", "relation", relation, "rows", len(b))
	}
	return nil
}

// convertText converts one delimited field to the column's type.
func convertText(t columnType, s string) (any, error) {
	if t.nullable && s == "" {
		return nil, nil
	}
	switch t.kind {
	case colInt:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case colFloat:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case colBool:
		return strconv.ParseBool(strings.TrimSpace(s))
	case colVector:
		return parseVector(s, t)
	default:
		return s, nil
	}
}

// parseVector parses "[1.0, 2.0, ...]" or "1.0,2.0,...".
func parseVector(s string, t columnType) (any, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.Split(s, ",")
	if len(parts) != t.dim {
		return nil, fmt.Errorf("vector has %d values, want %d", len(parts), t.dim)
	}
	if t.elem == "F64" {
		out := make([]float64, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// arrayValue converts row i of a numeric array to the column's type.
func arrayValue(t columnType, a *dataset.Array, i int) (any, error) {
	switch t.kind {
	case colInt:
		v, ok := a.Int64(i)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer", a.Float64(i))
		}
		return v, nil
	case colFloat, colAny:
		return a.Float64(i), nil
	case colVector:
		if t.elem == "F64" {
			return a.Float64Row(i), nil
		}
		return a.Float32Row(i), nil
	default:
		return nil, fmt.Errorf("numeric arrays cannot fill %s columns", t.raw)
	}
}
