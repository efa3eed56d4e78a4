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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/ukg/pkg/extract"
	"github.com/kraklabs/ukg/pkg/kg"
)

// Config configures one batch run.
type Config struct {
	// Parallel selects the worker-pool execution mode. Sequential runs
	// preserve input order in the report; parallel runs collect outcomes
	// in completion order.
	Parallel bool

	// MaxWorkers is the fixed worker pool size for parallel mode.
	// Values below 1 fall back to DefaultMaxWorkers.
	MaxWorkers int

	// ExcludeGlobs are passed to each repository's directory walker.
	ExcludeGlobs []string

	// NotebookConverter is the external notebook-to-script command, empty
	// to disable conversion.
	NotebookConverter string

	// ScratchDir is the base directory for conversion artifacts. Each
	// unit of work gets its own subdirectory to avoid collisions.
	ScratchDir string

	// OnEvent, when set, receives progress events. Called from the
	// collecting goroutine only.
	OnEvent EventFunc
}

// DefaultMaxWorkers is the worker pool size when none is configured.
const DefaultMaxWorkers = 4

// Orchestrator runs the extraction pipeline over many repositories,
// isolating failures at the repository boundary: an extractor crash, an
// I/O error or a panic inside one unit of work becomes a failed outcome,
// never a batch abort.
type Orchestrator struct {
	config Config
	logger *slog.Logger
	runID  string
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = DefaultMaxWorkers
	}
	return &Orchestrator{
		config: config,
		logger: logger,
		runID:  uuid.NewString(),
	}
}

// RunID identifies this batch run in reports and scratch paths.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run processes every repo and returns the finalized report. The report's
// summary statistics are order-independent, so parallel and sequential
// runs over the same inputs agree on everything but timing.
func (o *Orchestrator) Run(ctx context.Context, repos []Repo) *kg.BatchReport {
	start := time.Now()
	o.logger.Info("batch.run.start",
		"run_id", o.runID,
		"repos", len(repos),
		"parallel", o.config.Parallel,
		"workers", o.workerCount(),
	)

	var outcomes []kg.RepoOutcome
	if o.config.Parallel && len(repos) > 1 {
		outcomes = o.runParallel(ctx, repos)
	} else {
		outcomes = o.runSequential(ctx, repos)
	}

	report := buildReport(o.runID, outcomes)

	o.logger.Info("batch.run.complete",
		"run_id", o.runID,
		"total", report.Metadata.TotalRepos,
		"successful", report.Metadata.Successful,
		"failed", report.Metadata.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}

func (o *Orchestrator) workerCount() int {
	if !o.config.Parallel {
		return 1
	}
	return o.config.MaxWorkers
}

// runSequential processes repositories one at a time, in input order.
func (o *Orchestrator) runSequential(ctx context.Context, repos []Repo) []kg.RepoOutcome {
	outcomes := make([]kg.RepoOutcome, 0, len(repos))
	for i, repo := range repos {
		o.emit(Event{Type: EventStarted, Repo: repo.Path, RepoName: repo.Name, Completed: i, Total: len(repos)})
		outcome := o.processRepo(ctx, repo)
		outcomes = append(outcomes, outcome)
		o.emit(Event{
			Type:      EventCompleted,
			Repo:      repo.Path,
			RepoName:  repo.Name,
			Completed: i + 1,
			Total:     len(repos),
			Outcome:   &outcome,
		})
	}
	return outcomes
}

// runParallel fans repositories out over a fixed worker pool. Each unit of
// work builds its own aggregator, so workers share no mutable state;
// results flow back as immutable outcomes on a channel and are collected
// in completion order.
func (o *Orchestrator) runParallel(ctx context.Context, repos []Repo) []kg.RepoOutcome {
	jobs := make(chan Repo, len(repos))
	results := make(chan kg.RepoOutcome, len(repos))

	var wg sync.WaitGroup
	for w := 0; w < o.config.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for repo := range jobs {
				results <- o.processRepo(ctx, repo)
			}
		}()
	}

	for _, repo := range repos {
		jobs <- repo
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]kg.RepoOutcome, 0, len(repos))
	completed := 0
	for outcome := range results {
		completed++
		outcomes = append(outcomes, outcome)
		o.emit(Event{
			Type:      EventCompleted,
			Repo:      outcome.Repo,
			RepoName:  outcome.RepoName,
			Completed: completed,
			Total:     len(repos),
			Outcome:   &outcome,
		})
	}
	return outcomes
}

// processRepo runs the pipeline for one repository, converting every
// failure mode, including panics, into a failed outcome.
func (o *Orchestrator) processRepo(ctx context.Context, repo Repo) (outcome kg.RepoOutcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("batch.repo.panic", "repo", repo.Path, "panic", r)
			outcome = kg.NewOutcome(repo.Path, repo.Name, kg.StatusFailed, time.Since(start))
			outcome.Error = fmt.Sprintf("panic: %v", r)
			reposFailed.Inc()
		}
	}()

	registry := extract.NewDefaultRegistry(o.logger, extract.NotebookOptions{
		ConverterCmd: o.config.NotebookConverter,
		ScratchDir:   o.scratchFor(repo),
	})
	walker := extract.NewWalker(o.logger, extract.WalkerOptions{
		ExcludeGlobs: o.config.ExcludeGlobs,
	})
	pipeline := extract.NewPipeline(registry, walker, o.logger)

	result, err := pipeline.Run(ctx, repo.Path)
	if err != nil {
		o.logger.Warn("batch.repo.failed", "repo", repo.Path, "err", err)
		outcome = kg.NewOutcome(repo.Path, repo.Name, kg.StatusFailed, time.Since(start))
		outcome.Error = err.Error()
		outcome.Commit = repo.Commit
		outcome.Branch = repo.Branch
		reposFailed.Inc()
		return outcome
	}

	stats := result.Stats
	outcome = kg.NewOutcome(repo.Path, repo.Name, kg.StatusSuccess, time.Since(start))
	outcome.Stats = &stats
	outcome.Commit = repo.Commit
	outcome.Branch = repo.Branch
	reposSucceeded.Inc()
	repoDuration.Observe(outcome.Duration)
	return outcome
}

// scratchFor namespaces the shared scratch directory by run and unit of
// work so parallel workers never collide on conversion artifacts.
func (o *Orchestrator) scratchFor(repo Repo) string {
	base := o.config.ScratchDir
	if base == "" {
		base = filepath.Join(os.TempDir(), "ukg-scratch")
	}
	return filepath.Join(base, o.runID, repo.Name)
}

func (o *Orchestrator) emit(e Event) {
	if o.config.OnEvent != nil {
		o.config.OnEvent(e)
	}
}
