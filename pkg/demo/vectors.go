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

	"github.com/kraklabs/graphdemo/internal/dataset"
)

const firstVectorInsertID = 1_000_000

// vectorWorkload is a nearest-neighbour workload over fixed-width vectors.
type vectorWorkload struct {
	name     string
	dim      int
	distance string

	// logThreads logs the connection's thread count before loading.
	logThreads bool
}

var vectorWorkloads = map[Dataset]vectorWorkload{
	LastFM: {name: "lastfm", dim: 65, distance: "Cosine"},
	MNIST:  {name: "mnist", dim: 784, distance: "L2", logThreads: true},
}

func (v vectorWorkload) idFile() string      { return v.name + "_id.npy" }
func (v vectorWorkload) trainFile() string   { return v.name + "_train.npy" }
func (v vectorWorkload) queriesFile() string { return v.name + "_queries.npy" }
func (v vectorWorkload) insertFile() string  { return v.name + "_insert.npy" }

func (v vectorWorkload) searchStatement() string {
	return "?[id, distance] := ~tbl:vec_idx{id | query: vec($queryVector), k: 5, ef: 50, bind_distance: distance} :order distance"
}

func (v vectorWorkload) insertStatement() string {
	return "?[id, vec] <- [[$id, vec($vec)]] :put tbl {id => vec}"
}

func (v vectorWorkload) load(ctx context.Context, r *runner) error {
	if v.logThreads {
		r.log.Appendf("Execution threads: %d", r.conn.MaxNumThreadsForExec())
	}
	if _, err := r.exec(ctx, fmt.Sprintf(":create tbl {id: Int => vec: <F32; %d>}", v.dim)); err != nil {
		return err
	}
	copyStmt := fmt.Sprintf("COPY tbl FROM ('%s', '%s') BY COLUMN", r.path(v.idFile()), r.path(v.trainFile()))
	_, err := r.exec(ctx, copyStmt)
	return err
}

func (v vectorWorkload) bench(ctx context.Context, r *runner) error {
	index := fmt.Sprintf("::hnsw create tbl:vec_idx {dim: %d, m: 50, ef_construction: 20, fields: [vec], distance: %s}", v.dim, v.distance)
	if _, err := r.exec(ctx, index); err != nil {
		return err
	}

	search, err := r.prepare(v.searchStatement())
	if err != nil {
		return err
	}
	insert, err := r.prepare(v.insertStatement())
	if err != nil {
		return err
	}

	queries, err := readVectors(r.path(v.queriesFile()), v.dim)
	if err != nil {
		return err
	}
	for i, q := range queries {
		r.log.Appendf("Executing query with qvec%d", i+1)
		res, err := r.conn.Execute(ctx, search, map[string]any{"queryVector": q})
		if err != nil {
			return err
		}
		r.log.Append(resultEntry(res))
	}

	inserts, err := readVectors(r.path(v.insertFile()), v.dim)
	if err != nil {
		return err
	}
	r.log.Append("Executing insertions")
	bar := r.progress("inserting vectors", len(inserts))
	var execTotal, compileTotal float64
	for i, vec := range inserts {
		res, err := r.conn.Execute(ctx, insert, map[string]any{"id": firstVectorInsertID + i, "vec": vec})
		if err != nil {
			bar.Finish()
			return err
		}
		execTotal += res.ExecutionTime()
		compileTotal += res.CompilingTime()
		bar.Add(1)
	}
	bar.Finish()
	r.log.Appendf("Total execution time: %s", formatMillis(execTotal))
	r.log.Appendf("Total compile time: %s", formatMillis(compileTotal))

	return r.checkpoint(ctx)
}

// readVectors loads an .npy matrix of dim-wide rows.
func readVectors(path string, dim int) ([][]float32, error) {
	a, err := dataset.ReadArray(path)
	if err != nil {
		return nil, err
	}
	if a.Scalar() || a.Width() != dim {
		return nil, fmt.Errorf("%s: want rows of %d values, got shape %v", path, dim, a.Shape)
	}
	out := make([][]float32, a.Rows())
	for i := range out {
		out[i] = a.Float32Row(i)
	}
	return out, nil
}
