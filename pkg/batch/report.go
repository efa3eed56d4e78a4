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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kraklabs/ukg/pkg/kg"
)

// buildReport assembles the final report from collected outcomes. Summary
// statistics cover successful repositories only; a batch with no successes
// reports zeroed durations rather than NaN.
func buildReport(runID string, outcomes []kg.RepoOutcome) *kg.BatchReport {
	report := &kg.BatchReport{
		Metadata: kg.BatchMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			RunID:      runID,
			TotalRepos: len(outcomes),
		},
		Results: outcomes,
	}

	var durations []float64
	for _, outcome := range outcomes {
		switch outcome.Status {
		case kg.StatusSuccess:
			report.Metadata.Successful++
			durations = append(durations, outcome.Duration)
			if outcome.Stats != nil {
				report.Statistics.TotalDocsGenerated += outcome.Stats.TotalFiles
			}
		default:
			report.Metadata.Failed++
		}
	}

	if len(durations) > 0 {
		sort.Float64s(durations)
		report.Statistics.MinDuration = durations[0]
		report.Statistics.MaxDuration = durations[len(durations)-1]
		var sum float64
		for _, d := range durations {
			sum += d
		}
		report.Statistics.AvgDuration = sum / float64(len(durations))
	}

	return report
}

// SaveReport writes the batch report as indented JSON, creating parent
// directories as needed.
func SaveReport(report *kg.BatchReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteRepoIndex renders a human-readable markdown index of the batch,
// one row per repository, sorted by name with failures listed last.
func WriteRepoIndex(report *kg.BatchReport, path string) error {
	results := make([]kg.RepoOutcome, len(report.Results))
	copy(results, report.Results)
	sort.Slice(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status == kg.StatusSuccess
		}
		return results[i].RepoName < results[j].RepoName
	})

	var b strings.Builder
	b.WriteString("# Repository Index\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.Metadata.Timestamp)
	fmt.Fprintf(&b, "Processed %d repositories: %d succeeded, %d failed.\n\n",
		report.Metadata.TotalRepos, report.Metadata.Successful, report.Metadata.Failed)

	b.WriteString("| Repository | Status | Files | Entities | Relationships | Duration (s) |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range results {
		files, entities, rels := 0, 0, 0
		if r.Stats != nil {
			files = r.Stats.TotalFiles
			entities = r.Stats.TotalEntities
			rels = r.Stats.TotalRelationships
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %.2f |\n",
			r.RepoName, r.Status, files, entities, rels, r.Duration)
	}

	var failures []kg.RepoOutcome
	for _, r := range results {
		if r.Status != kg.StatusSuccess {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, r := range failures {
			fmt.Fprintf(&b, "- **%s**: %s\n", r.RepoName, r.Error)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
