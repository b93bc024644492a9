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
)

// msmarco is the full-text workload over a sample of MS MARCO passages.
type msmarco struct{}

const msmarcoIndex = "::fts create doc:content_idx {extractor: content, tokenizer: Simple, filters: [Lowercase, Stemmer('english'), Stopwords('en')]}"

var msmarcoQueries = []string{"dispossessed meaning", "define extreme"}

func (msmarco) load(ctx context.Context, r *runner) error {
	if _, err := r.exec(ctx, ":create doc {id: Int => content: String}"); err != nil {
		return err
	}
	copyStmt := fmt.Sprintf("COPY doc FROM '%s' (file_format='csv', delim='\\t')", r.path("collection_sample.tsv"))
	_, err := r.exec(ctx, copyStmt)
	return err
}

func (msmarco) bench(ctx context.Context, r *runner) error {
	if _, err := r.exec(ctx, msmarcoIndex); err != nil {
		return err
	}

	// Ranking queries are measured single-threaded.
	r.conn.SetMaxNumThreadsForExec(1)

	for _, q := range msmarcoQueries {
		stmt := fmt.Sprintf("?[id, score] := ~doc:content_idx{id | query: '%s', k: 10, bind_score: score} :order -score :limit 10", q)
		if _, err := r.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
