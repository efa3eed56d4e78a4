// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package kg

import (
	"log/slog"
	"path/filepath"
)

// Aggregator owns the cumulative knowledge graph for a single repository
// run. Each pipeline run constructs its own Aggregator; instances are not
// safe for concurrent use and are never shared across runs.
type Aggregator struct {
	graph  KnowledgeGraph
	seen   map[string]bool // files_processed membership
	logger *slog.Logger
}

// NewAggregator creates an empty aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		graph: KnowledgeGraph{
			Metadata: make(map[string]map[string]any),
		},
		seen:   make(map[string]bool),
		logger: logger,
	}
}

// Merge folds one extraction result into the aggregate. Entities and
// relationships are appended as-is; metadata for the source file is
// replaced (last merge wins); the processed-file ledger records the file
// at most once. Merging the same result twice therefore duplicates
// entities but not the ledger entry.
func (a *Aggregator) Merge(result *ExtractionResult) {
	if result == nil {
		return
	}

	a.graph.Entities = append(a.graph.Entities, result.Entities...)
	a.graph.Relationships = append(a.graph.Relationships, result.Relationships...)

	meta := map[string]any{"file_type": result.FileType}
	for k, v := range result.Metadata {
		meta[k] = v
	}
	if result.ConvertedArtifact != "" {
		meta["converted_artifact"] = result.ConvertedArtifact
	}
	a.graph.Metadata[result.SourceFile] = meta

	if !a.seen[result.SourceFile] {
		a.seen[result.SourceFile] = true
		a.graph.FilesProcessed = append(a.graph.FilesProcessed, result.SourceFile)
	}

	a.logger.Debug("kg.merge",
		"file", result.SourceFile,
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
	)
}

// Graph returns the current aggregate. The returned value shares backing
// storage with the aggregator; callers must not merge concurrently with
// reading it.
func (a *Aggregator) Graph() *KnowledgeGraph {
	return &a.graph
}

// Statistics computes counts from the current aggregate. Nothing is
// cached: the result always reflects the latest merge.
func (a *Aggregator) Statistics() Statistics {
	stats := Statistics{
		TotalFiles:         len(a.graph.FilesProcessed),
		TotalEntities:      len(a.graph.Entities),
		TotalRelationships: len(a.graph.Relationships),
		FileTypes:          make(map[string]int),
		EntityTypes:        make(map[string]int),
	}

	for _, path := range a.graph.FilesProcessed {
		stats.FileTypes[filepath.Ext(path)]++
	}
	for _, e := range a.graph.Entities {
		t := e.Type
		if t == "" {
			t = "unknown"
		}
		stats.EntityTypes[t]++
	}

	return stats
}

// DanglingRelationships returns every relationship whose From or To name
// does not match any entity currently in the aggregate. Cross-file
// references may only resolve after full-graph assembly, so this is a
// diagnostic, not validation.
func (a *Aggregator) DanglingRelationships() []Relationship {
	names := make(map[string]bool, len(a.graph.Entities))
	for _, e := range a.graph.Entities {
		names[e.Name] = true
	}

	var dangling []Relationship
	for _, r := range a.graph.Relationships {
		if !names[r.From] || !names[r.To] {
			dangling = append(dangling, r)
		}
	}
	return dangling
}
