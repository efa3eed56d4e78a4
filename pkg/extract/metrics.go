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

package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the extraction subsystem. Exposed when the batch
// CLI runs with --metrics-addr.
var (
	filesExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukg_files_extracted_total",
		Help: "Files successfully extracted and merged into a graph",
	})
	filesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukg_files_failed_total",
		Help: "Files that failed extraction and were skipped",
	})
	filesUnresolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukg_files_unresolved_total",
		Help: "Walked files no extractor claimed",
	})
	extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ukg_extract_seconds",
		Help:    "Per-file extraction duration",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
