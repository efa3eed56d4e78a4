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

// Package kg defines the unified knowledge graph data model and the
// aggregator that merges per-file extraction results into it.
//
// An Entity is a named, typed unit of knowledge (a function, a table, a
// slide) tied to the file it was extracted from. A Relationship is a typed,
// directed edge between two entities, scoped to the file it was observed in.
// Relationships reference entities by name; dangling references are
// tolerated and can be inspected with Aggregator.DanglingRelationships.
package kg

import "time"

// Entity is a single extracted unit of knowledge.
// Identity is the (Type, Name, SourceFile) triple: the same name may appear
// in multiple files, and provenance keeps those occurrences distinct.
type Entity struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	SourceFile string         `json:"source_file"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Relationship is a typed, directed edge between two entities, referenced
// by name. The endpoints are not required to resolve against the aggregate.
type Relationship struct {
	Type       string `json:"type"`
	From       string `json:"from"`
	To         string `json:"to"`
	SourceFile string `json:"source_file"`
}

// ExtractionResult is what an extractor produces for one file. It is
// immutable after creation; the aggregator only reads it.
type ExtractionResult struct {
	SourceFile    string         `json:"source_file"`
	FileType      string         `json:"file_type"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Metadata      map[string]any `json:"metadata,omitempty"`

	// ConvertedArtifact is the path of an intermediate artifact produced
	// during extraction (e.g. a notebook converted to a script), if any.
	ConvertedArtifact string `json:"converted_artifact,omitempty"`
}

// KnowledgeGraph is the merged aggregate for one repository run.
// FilesProcessed never contains a duplicate path, and every entity and
// relationship source file appears in it.
type KnowledgeGraph struct {
	Entities       []Entity                  `json:"entities"`
	Relationships  []Relationship            `json:"relationships"`
	Metadata       map[string]map[string]any `json:"metadata"`
	FilesProcessed []string                  `json:"files_processed"`
}

// Statistics summarizes a knowledge graph at a point in time.
type Statistics struct {
	TotalFiles         int            `json:"total_files"`
	TotalEntities      int            `json:"total_entities"`
	TotalRelationships int            `json:"total_relationships"`
	FileTypes          map[string]int `json:"file_types"`
	EntityTypes        map[string]int `json:"entity_types"`
}

// Repo processing status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RepoOutcome records the result of processing one repository. It is
// created once when the pipeline finishes and never mutated.
type RepoOutcome struct {
	Repo      string  `json:"repo"`
	RepoName  string  `json:"repo_name"`
	Status    string  `json:"status"`
	Duration  float64 `json:"duration_seconds"`
	Error     string  `json:"error,omitempty"`
	Timestamp string  `json:"timestamp"`

	// Graph summary, present only for successful outcomes.
	Stats *Statistics `json:"stats,omitempty"`

	// Commit and Branch identify the repository HEAD at processing time.
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// BatchMetadata describes a completed batch run.
type BatchMetadata struct {
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id"`
	TotalRepos int    `json:"total_repos"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

// BatchStatistics holds duration and output statistics across the
// successful outcomes of a batch.
type BatchStatistics struct {
	AvgDuration        float64 `json:"avg_duration"`
	MinDuration        float64 `json:"min_duration"`
	MaxDuration        float64 `json:"max_duration"`
	TotalDocsGenerated int     `json:"total_docs_generated"`
}

// BatchReport is the persisted result of a batch run.
type BatchReport struct {
	Metadata   BatchMetadata   `json:"metadata"`
	Results    []RepoOutcome   `json:"results"`
	Statistics BatchStatistics `json:"statistics"`
}

// NewOutcome builds a RepoOutcome with the timestamp set to now.
func NewOutcome(repo, name, status string, duration time.Duration) RepoOutcome {
	return RepoOutcome{
		Repo:      repo,
		RepoName:  name,
		Status:    status,
		Duration:  duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
