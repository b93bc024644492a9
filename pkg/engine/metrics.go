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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsEngine holds Prometheus metrics for the engine.
type metricsEngine struct {
	once sync.Once

	opens            prometheus.Counter
	statements       *prometheus.CounterVec
	statementSeconds *prometheus.HistogramVec

	copiedTuples prometheus.Counter
	copyBatches  prometheus.Counter

	checkpoints       prometheus.Counter
	checkpointSeconds prometheus.Histogram
}

var engMetrics metricsEngine

func (m *metricsEngine) init() {
	m.once.Do(func() {
		m.opens = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphdemo_engine_opens_total", Help: "Databases opened"})
		m.statements = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "graphdemo_engine_statements_total", Help: "Statements run by kind and outcome"}, []string{"kind", "outcome"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.statementSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "graphdemo_engine_statement_seconds", Help: "Statement duration including compile time", Buckets: buckets}, []string{"kind"})

		m.copiedTuples = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphdemo_engine_copied_tuples_total", Help: "Tuples imported by COPY"})
		m.copyBatches = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphdemo_engine_copy_batches_total", Help: "Import batches sent by COPY"})

		m.checkpoints = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphdemo_engine_checkpoints_total", Help: "Checkpoints completed"})
		m.checkpointSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "graphdemo_engine_checkpoint_seconds", Help: "Checkpoint duration", Buckets: buckets})

		prometheus.MustRegister(
			m.opens, m.statements, m.statementSeconds,
			m.copiedTuples, m.copyBatches,
			m.checkpoints, m.checkpointSeconds,
		)
	})
}

func recordStatement(kind statementKind, err error, d time.Duration) {
	engMetrics.init()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	engMetrics.statements.WithLabelValues(kind.String(), outcome).Inc()
	engMetrics.statementSeconds.WithLabelValues(kind.String()).Observe(d.Seconds())
}
