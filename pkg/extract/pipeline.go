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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/ukg/pkg/kg"
)

// RepoProcessingError wraps a failure that prevented a repository from
// producing a graph at all (walking the tree, stat of the root). It is
// recoverable at the batch level: the repo is marked failed and the batch
// continues.
type RepoProcessingError struct {
	Repo string
	Err  error
}

func (e *RepoProcessingError) Error() string {
	return fmt.Sprintf("process repo %s: %v", e.Repo, e.Err)
}

func (e *RepoProcessingError) Unwrap() error {
	return e.Err
}

// Pipeline composes the walker, the registry and a fresh aggregator to
// process one repository. Every run owns a private aggregator, so pipeline
// runs on different repositories never share mutable state.
type Pipeline struct {
	registry *Registry
	walker   *Walker
	logger   *slog.Logger
}

// PipelineResult is what one repository run produces. File-level failures
// are recorded here, not raised: an unreadable or malformed file degrades
// completeness, not availability.
type PipelineResult struct {
	Graph *kg.KnowledgeGraph
	Stats kg.Statistics

	// FilesFound is the number of candidate files the walk produced.
	FilesFound int

	// FailedFiles maps each failed file to its extraction error message.
	FailedFiles map[string]string

	// UnresolvedFiles lists walked files no extractor claimed. They are
	// warnings, not failures.
	UnresolvedFiles []string

	Duration time.Duration
}

// NewPipeline creates a pipeline over the given registry and walker.
func NewPipeline(registry *Registry, walker *Walker, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: registry, walker: walker, logger: logger}
}

// Run walks repoRoot, extracts every candidate file and merges the results
// into a fresh aggregate. A single file failure never aborts the run; only
// a failure to enumerate the tree does, surfaced as *RepoProcessingError.
// The context is checked between files; cancellation returns the partial
// graph built so far along with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, repoRoot string) (*PipelineResult, error) {
	start := time.Now()
	p.logger.Info("pipeline.run.start", "repo", repoRoot)

	extensions := p.registry.SupportedExtensions()
	files, err := p.walker.Walk(repoRoot, true, extensions)
	if err != nil {
		return nil, &RepoProcessingError{Repo: repoRoot, Err: err}
	}

	agg := kg.NewAggregator(p.logger)
	result := &PipelineResult{
		FilesFound:  len(files),
		FailedFiles: make(map[string]string),
	}

	for i, file := range files {
		select {
		case <-ctx.Done():
			result.Graph = agg.Graph()
			result.Stats = agg.Statistics()
			result.Duration = time.Since(start)
			return result, ctx.Err()
		default:
		}

		extractor := p.registry.Resolve(file)
		if extractor == nil {
			p.logger.Warn("pipeline.file.unresolved", "file", file)
			result.UnresolvedFiles = append(result.UnresolvedFiles, file)
			filesUnresolved.Inc()
			continue
		}

		p.logger.Debug("pipeline.file.extract",
			"file", file,
			"extractor", extractor.Name(),
			"progress", fmt.Sprintf("%d/%d", i+1, len(files)),
		)

		extractStart := time.Now()
		er, err := extractor.Extract(file)
		extractDuration.Observe(time.Since(extractStart).Seconds())
		if err != nil {
			p.logger.Warn("pipeline.file.error", "file", file, "err", err)
			result.FailedFiles[file] = err.Error()
			filesFailed.Inc()
			continue
		}

		agg.Merge(er)
		filesExtracted.Inc()
	}

	result.Graph = agg.Graph()
	result.Stats = agg.Statistics()
	result.Duration = time.Since(start)

	p.logger.Info("pipeline.run.complete",
		"repo", repoRoot,
		"files_found", result.FilesFound,
		"files_processed", result.Stats.TotalFiles,
		"files_failed", len(result.FailedFiles),
		"entities", result.Stats.TotalEntities,
		"relationships", result.Stats.TotalRelationships,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// RunWithAggregator is like Run but merges into a caller-supplied
// aggregator, letting callers layer multiple roots into one graph or
// export after the run without copying.
func (p *Pipeline) RunWithAggregator(ctx context.Context, repoRoot string, agg *kg.Aggregator) (*PipelineResult, error) {
	extensions := p.registry.SupportedExtensions()
	files, err := p.walker.Walk(repoRoot, true, extensions)
	if err != nil {
		return nil, &RepoProcessingError{Repo: repoRoot, Err: err}
	}

	start := time.Now()
	result := &PipelineResult{
		FilesFound:  len(files),
		FailedFiles: make(map[string]string),
	}

	for _, file := range files {
		if ctx.Err() != nil {
			result.Graph = agg.Graph()
			result.Stats = agg.Statistics()
			result.Duration = time.Since(start)
			return result, ctx.Err()
		}

		extractor := p.registry.Resolve(file)
		if extractor == nil {
			result.UnresolvedFiles = append(result.UnresolvedFiles, file)
			filesUnresolved.Inc()
			continue
		}
		er, err := extractor.Extract(file)
		if err != nil {
			result.FailedFiles[file] = err.Error()
			filesFailed.Inc()
			continue
		}
		agg.Merge(er)
		filesExtracted.Inc()
	}

	result.Graph = agg.Graph()
	result.Stats = agg.Statistics()
	result.Duration = time.Since(start)
	return result, nil
}
