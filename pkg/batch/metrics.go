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

package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reposSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukg_repos_succeeded_total",
		Help: "Repositories processed to completion",
	})

	reposFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ukg_repos_failed_total",
		Help: "Repositories that failed during processing",
	})

	repoDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ukg_repo_duration_seconds",
		Help:    "Wall-clock processing time per repository",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})
)
