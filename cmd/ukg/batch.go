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

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ukg/internal/errors"
	"github.com/kraklabs/ukg/internal/output"
	"github.com/kraklabs/ukg/internal/ui"
	"github.com/kraklabs/ukg/pkg/batch"
	"github.com/kraklabs/ukg/pkg/kg"
)

// runBatch executes the 'batch' CLI command, processing every git repository
// found under a root directory and writing a JSON batch report.
//
// Flags:
//   - --parallel: Process repositories concurrently (default: true)
//   - --workers: Worker pool size for parallel mode (default: from config)
//   - --filter: Only process repositories whose name contains this substring
//   - --output: Batch report path (default: <output_dir>/batch_report.json)
//   - --index: Also write a markdown repository index to this path
//   - --metrics-addr: HTTP listen address for Prometheus metrics
//   - --notebook-converter: Override the configured notebook converter
//   - --debug: Enable debug logging
//
// Examples:
//
//	ukg batch /data/repos
//	ukg batch /data/repos --filter api --workers 8
//	ukg batch /data/repos --parallel=false
//	ukg batch /data/repos --index ukg-output/INDEX.md
func runBatch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	parallel := fs.Bool("parallel", true, "Process repositories concurrently")
	workers := fs.Int("workers", 0, "Worker pool size (0 uses the configured default)")
	filter := fs.String("filter", "", "Only process repositories whose name contains this substring")
	outPath := fs.String("output", "", "Batch report path (default: <output_dir>/batch_report.json)")
	indexPath := fs.String("index", "", "Also write a markdown repository index to this path")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	converter := fs.String("notebook-converter", "", "Override the configured notebook converter command")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ukg batch <repos_root> [options]

Discovers every git repository under repos_root, runs the extraction
pipeline on each one, and writes a JSON batch report. A repository
failure is recorded in the report and never aborts the batch.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	reposRoot := fs.Arg(0)
	if abs, err := filepath.Abs(reposRoot); err == nil {
		reposRoot = abs
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load UKG configuration",
			err.Error(),
			"Fix the YAML syntax or delete the file to use defaults",
			err,
		), globals.JSON)
	}

	logger := newLogger(*debug)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	repos, err := batch.DiscoverRepos(reposRoot, *filter, logger)
	if err != nil {
		errors.FatalError(errors.NewNotFoundError(
			"Cannot scan repository root",
			err.Error(),
			"Check that the path exists and is readable",
		), globals.JSON)
	}
	if len(repos) == 0 {
		errors.FatalError(errors.NewNotFoundError(
			"No repositories found",
			fmt.Sprintf("No directory under %s contains a .git folder matching the filter", reposRoot),
			"Clone at least one repository into the root, or relax --filter",
		), globals.JSON)
	}

	workerCount := *workers
	if workerCount < 1 {
		workerCount = cfg.Batch.Workers
	}
	notebookCmd := cfg.Notebook.Converter
	if *converter != "" {
		notebookCmd = *converter
	}

	if !globals.Quiet {
		ui.Header("Batch Extraction")
		fmt.Printf("Root: %s\n", reposRoot)
		fmt.Printf("Repositories: %s\n", ui.CountText(len(repos)))
		if *parallel {
			fmt.Printf("Workers: %s\n", ui.CountText(workerCount))
		} else {
			fmt.Println("Mode: sequential")
		}
		fmt.Println()
	}

	progress := NewProgressConfig(globals)
	bar := NewProgressBar(progress, int64(len(repos)), "processing repositories")

	onEvent := func(e batch.Event) {
		if e.Type != batch.EventCompleted {
			return
		}
		if bar != nil {
			_ = bar.Add(1)
		}
		if e.Outcome != nil && e.Outcome.Status == kg.StatusFailed && !globals.Quiet {
			ui.Errorf("%s: %s", e.RepoName, e.Outcome.Error)
		}
	}

	orch := batch.NewOrchestrator(batch.Config{
		Parallel:          *parallel,
		MaxWorkers:        workerCount,
		ExcludeGlobs:      cfg.Extraction.Exclude,
		NotebookConverter: notebookCmd,
		ScratchDir:        cfg.Notebook.ScratchDir,
		OnEvent:           onEvent,
	}, logger)

	report := orch.Run(ctx, repos)
	if bar != nil {
		_ = bar.Finish()
	}

	target := *outPath
	if target == "" {
		target = filepath.Join(cfg.Batch.OutputDir, "batch_report.json")
	}
	if err := batch.SaveReport(report, target); err != nil {
		errors.FatalError(errors.NewExportError(
			"Cannot write batch report",
			err.Error(),
			"Check the output path is writable",
			err,
		), globals.JSON)
	}

	if *indexPath != "" {
		if err := batch.WriteRepoIndex(report, *indexPath); err != nil {
			errors.FatalError(errors.NewExportError(
				"Cannot write repository index",
				err.Error(),
				"Check the index path is writable",
				err,
			), globals.JSON)
		}
	}

	if globals.JSON {
		_ = output.JSON(report)
		return
	}

	printBatchSummary(report, target)
}

// failedRepoLines renders one "name: error" line per failed repository so
// a degraded run is diagnosable from the summary alone.
func failedRepoLines(report *kg.BatchReport) []string {
	var lines []string
	for _, r := range report.Results {
		if r.Status != kg.StatusFailed {
			continue
		}
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", r.RepoName, msg))
	}
	return lines
}

// printBatchSummary prints a human-readable batch summary.
func printBatchSummary(report *kg.BatchReport, reportPath string) {
	fmt.Println()
	ui.Header("Batch Extraction Summary")
	fmt.Printf("Total: %s\n", ui.CountText(report.Metadata.TotalRepos))
	fmt.Printf("Successful: %s\n", ui.CountText(report.Metadata.Successful))
	fmt.Printf("Failed: %s\n", ui.CountText(report.Metadata.Failed))

	if report.Metadata.Successful > 0 {
		fmt.Println("\nTimings:")
		fmt.Printf("  Avg: %.2fs\n", report.Statistics.AvgDuration)
		fmt.Printf("  Min: %.2fs\n", report.Statistics.MinDuration)
		fmt.Printf("  Max: %.2fs\n", report.Statistics.MaxDuration)
		fmt.Printf("Files Processed: %s\n", ui.CountText(report.Statistics.TotalDocsGenerated))
	}

	if report.Metadata.Failed > 0 {
		fmt.Println("\nFailed repositories:")
		for _, line := range failedRepoLines(report) {
			ui.Errorf("  %s", line)
		}
	}

	fmt.Println()
	if report.Metadata.Failed == 0 {
		ui.Successf("All %d repositories processed, report written to %s",
			report.Metadata.TotalRepos, reportPath)
	} else {
		ui.Warningf("%d of %d repositories failed, report written to %s",
			report.Metadata.Failed, report.Metadata.TotalRepos, reportPath)
	}
}
