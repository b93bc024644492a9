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
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kraklabs/graphdemo/internal/dataset"
)

const (
	ldbcSchemaFile  = "schema.cozo"
	ldbcCopyFile    = "copy.cozo"
	ldbcCommentFile = "comment_0_0.csv"

	// ldbcPathPrefix is how copy.cozo refers to the CSV directory.
	ldbcPathPrefix = "dataset/ldbc-1/csv/"

	ldbcTimestampLayout = "2006-01-02T15:04:05.000-0700"

	ldbcInsertSkip    = 100_000
	ldbcInsertLimit   = 10_000
	ldbcFirstInsertID = int64(2_200_000_000_000)
	ldbcTimedRuns     = 5
)

// ldbcQueries are the read benchmark over the LDBC SNB scale factor 1 graph.
var ldbcQueries = []string{
	`?[count(id)] := *comment{id, creationDate}, creationDate <= '2011-01-01'`,
	`?[count(p)] := *person{id: p, lastName: 'Kelly'}, *likeComment{person: p, comment: c1}, *likeComment{person: p, comment: c2}`,
	`edges[a, b] := *knows{from: a, to: b}
start[id] := *person{id, firstName: 'Igor', lastName: 'Kofler', birthday: '1983-08-25'}
paths[s, g, cost, path] <~ ShortestPathDijkstra(edges[], start[])
?[hops, count(g)] := paths[s, g, cost, path], hops = length(path) - 1`,
	`?[count(id), count_unique(locationIP), count_unique(browserUsed)] := *comment{id, locationIP, browserUsed}`,
	`?[browserUsed, count(id)] := *comment{id, browserUsed}`,
	`?[browserUsed] := *comment{browserUsed}`,
	`?[id, creationDate, locationIP, browserUsed, content, length] := *comment{id, creationDate, locationIP, browserUsed, content, length} :order creationDate :limit 100`,
}

const ldbcInsert = `?[id, creationDate, locationIP, browserUsed, content, length] <- [[$ID, $creationDate, $locationIP, $browserUsed, $content, $length]] :put comment {id => creationDate, locationIP, browserUsed, content, length}`

// ldbc is the graph workload: schema and bulk copy, read queries, prepared
// inserts and a checkpoint.
type ldbc struct{}

func (ldbc) load(ctx context.Context, r *runner) error {
	schema, err := readScript(r.path(ldbcSchemaFile))
	if err != nil {
		return err
	}
	copies, err := readScript(r.path(ldbcCopyFile))
	if err != nil {
		return err
	}
	dir := strings.TrimSuffix(r.datasetDir, "/") + "/"
	for i, stmt := range copies {
		copies[i] = strings.ReplaceAll(stmt, ldbcPathPrefix, dir)
	}

	r.log.Append("Creating schema...")
	for _, stmt := range schema {
		if _, err := r.query(ctx, stmt); err != nil {
			return err
		}
	}

	r.log.Append("Copying data...")
	var total float64
	for _, stmt := range copies {
		res, err := r.query(ctx, stmt)
		if err != nil {
			return err
		}
		total += res.ExecutionTime()
	}
	r.log.Appendf("Total copy time: %s", formatMillis(total))
	r.log.Append(Separator)
	return nil
}

func (ldbc) bench(ctx context.Context, r *runner) error {
	for _, q := range ldbcQueries {
		// warm-up, logged
		if _, err := r.exec(ctx, q); err != nil {
			return err
		}
		if _, err := r.query(ctx, q); err != nil {
			return err
		}

		var execTotal, compileTotal float64
		for i := 0; i < ldbcTimedRuns; i++ {
			res, err := r.query(ctx, q)
			if err != nil {
				return err
			}
			execTotal += res.ExecutionTime()
			compileTotal += res.CompilingTime()
		}
		r.log.Appendf("Average exec time: %s", formatMillis(execTotal/ldbcTimedRuns))
		r.log.Appendf("Average compile time: %s", formatMillis(compileTotal/ldbcTimedRuns))
		r.log.Append(Separator)
	}

	lines, err := dataset.ReadChunk(r.path(ldbcCommentFile), ldbcInsertSkip, ldbcInsertLimit)
	if err != nil {
		return err
	}
	params := make([]map[string]any, 0, len(lines))
	for i, line := range lines {
		p, err := parseComment(line, ldbcFirstInsertID+int64(i))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", ldbcCommentFile, ldbcInsertSkip+i+1, err)
		}
		params = append(params, p)
	}

	ps, err := r.conn.Prepare(ldbcInsert)
	if err != nil {
		return err
	}

	r.log.Appendf("Inserting %d tuples", len(params))
	bar := r.progress("inserting comments", len(params))
	var execTotal, compileTotal float64
	for _, p := range params {
		res, err := r.conn.Execute(ctx, ps, p)
		if err != nil {
			bar.Finish()
			return err
		}
		execTotal += res.ExecutionTime()
		compileTotal += res.CompilingTime()
		bar.Add(1)
	}
	bar.Finish()
	r.log.Appendf("Total exec time: %s", formatMillis(execTotal))
	r.log.Appendf("Total compile time: %s", formatMillis(compileTotal))
	r.log.Append(Separator)

	return r.checkpoint(ctx)
}

// parseComment turns one pipe-delimited comment row into insert parameters.
// Columns: id|creationDate|locationIP|browserUsed|content|length.
func parseComment(line string, id int64) (map[string]any, error) {
	fields := strings.Split(line, "|")
	if len(fields) < 6 {
		return nil, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}
	ts, err := time.Parse(ldbcTimestampLayout, fields[1])
	if err != nil {
		return nil, fmt.Errorf("parse creationDate: %w", err)
	}
	length, err := strconv.ParseInt(strings.TrimSpace(fields[5]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse length: %w", err)
	}
	return map[string]any{
		"ID":           id,
		"creationDate": ts,
		"locationIP":   fields[2],
		"browserUsed":  fields[3],
		"content":      fields[4],
		"length":       length,
	}, nil
}

// readScript returns the non-empty lines of a script file, one statement
// per line. Lines starting with # are comments.
func readScript(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var stmts []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stmts = append(stmts, line)
	}
	return stmts, nil
}
