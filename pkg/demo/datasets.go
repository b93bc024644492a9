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
	"strings"
)

// Dataset names one of the demo datasets.
type Dataset string

// Demo datasets.
const (
	MSMarco Dataset = "msmarco"
	LDBC    Dataset = "ldbc"
	LastFM  Dataset = "lastfm"
	MNIST   Dataset = "mnist"
)

// Datasets lists every dataset in presentation order.
func Datasets() []Dataset {
	return []Dataset{MSMarco, LDBC, LastFM, MNIST}
}

// ParseDataset resolves a dataset name, ignoring case.
func ParseDataset(name string) (Dataset, error) {
	d := Dataset(strings.ToLower(strings.TrimSpace(name)))
	if _, err := workloadFor(d); err != nil {
		return "", err
	}
	return d, nil
}

// Files lists the files d needs in the dataset directory.
func (d Dataset) Files() []string {
	switch d {
	case MSMarco:
		return []string{"collection_sample.tsv"}
	case LDBC:
		return []string{ldbcSchemaFile, ldbcCopyFile, ldbcCommentFile}
	case LastFM, MNIST:
		v := vectorWorkloads[d]
		return []string{v.idFile(), v.trainFile(), v.queriesFile(), v.insertFile()}
	default:
		return nil
	}
}

// workload is the load and benchmark pair of one dataset.
type workload interface {
	load(ctx context.Context, r *runner) error
	bench(ctx context.Context, r *runner) error
}

func workloadFor(d Dataset) (workload, error) {
	switch d {
	case MSMarco:
		return msmarco{}, nil
	case LDBC:
		return ldbc{}, nil
	case LastFM, MNIST:
		return vectorWorkloads[d], nil
	default:
		return nil, fmt.Errorf("unknown dataset %q (want one of msmarco, ldbc, lastfm, mnist)", string(d))
	}
}
