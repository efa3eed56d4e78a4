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

package extract

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/ukg/pkg/kg"
)

// SQL entity and relationship types.
const (
	EntityTable = "table"
	EntityView  = "view"

	RelReferences  = "references"
	RelSelectsFrom = "selects_from"
)

// SQL statement patterns. Pattern matching over a real SQL grammar is
// deliberate: DDL headers are regular enough, and the statements we care
// about (CREATE TABLE/VIEW, REFERENCES, FROM/JOIN) survive dialect
// differences that break strict parsers.
var (
	sqlCreateTableRe = regexp.MustCompile(`(?is)\bCREATE\s+(?:TEMP(?:ORARY)?\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([\w"` + "`" + `.]+)`)
	sqlCreateViewRe  = regexp.MustCompile(`(?is)\bCREATE\s+(?:OR\s+REPLACE\s+)?(?:MATERIALIZED\s+)?VIEW\s+(?:IF\s+NOT\s+EXISTS\s+)?([\w"` + "`" + `.]+)`)
	sqlReferencesRe  = regexp.MustCompile(`(?is)\bREFERENCES\s+([\w"` + "`" + `.]+)`)
	sqlFromJoinRe    = regexp.MustCompile(`(?is)\b(?:FROM|JOIN)\s+([\w"` + "`" + `.]+)`)
	sqlCommentRe     = regexp.MustCompile(`(?m)--.*$`)
)

// SQLExtractor extracts tables, views and table references from SQL files.
// This is the simplified string-matching strategy; no grammar for every
// SQL dialect exists in Tree-sitter form that we can depend on.
type SQLExtractor struct {
	logger *slog.Logger
}

// NewSQLExtractor creates a SQL extractor.
func NewSQLExtractor(logger *slog.Logger) *SQLExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLExtractor{logger: logger}
}

func (e *SQLExtractor) Name() string { return "sql" }

func (e *SQLExtractor) SupportedExtensions() []string {
	return []string{".sql"}
}

func (e *SQLExtractor) CanProcess(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

func (e *SQLExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}

	// Strip line comments so commented-out DDL is not extracted.
	script := sqlCommentRe.ReplaceAllString(string(content), "")

	result := &kg.ExtractionResult{
		SourceFile: path,
		FileType:   "sql",
		Metadata:   map[string]any{"language": "sql"},
	}
	seen := make(map[string]bool)

	addEntity := func(entityType, name string) {
		key := entityType + "\x00" + name
		if seen[key] {
			return
		}
		seen[key] = true
		result.Entities = append(result.Entities, kg.Entity{
			Type:       entityType,
			Name:       name,
			SourceFile: path,
		})
	}

	var created []string
	for _, m := range sqlCreateTableRe.FindAllStringSubmatch(script, -1) {
		name := sqlIdent(m[1])
		addEntity(EntityTable, name)
		created = append(created, name)
	}
	for _, m := range sqlCreateViewRe.FindAllStringSubmatch(script, -1) {
		name := sqlIdent(m[1])
		addEntity(EntityView, name)
		created = append(created, name)
	}

	// Foreign keys connect the most recently created table to its target.
	// Statement-accurate attribution is not attempted; the aggregator
	// tolerates approximate endpoints.
	if len(created) > 0 {
		owner := created[len(created)-1]
		for _, m := range sqlReferencesRe.FindAllStringSubmatch(script, -1) {
			target := sqlIdent(m[1])
			result.Relationships = append(result.Relationships, kg.Relationship{
				Type:       RelReferences,
				From:       owner,
				To:         target,
				SourceFile: path,
			})
		}
	}

	// FROM/JOIN targets read by queries in this file.
	relSeen := make(map[string]bool)
	fileName := filepath.Base(path)
	for _, m := range sqlFromJoinRe.FindAllStringSubmatch(script, -1) {
		target := sqlIdent(m[1])
		if target == "" || relSeen[target] {
			continue
		}
		relSeen[target] = true
		result.Relationships = append(result.Relationships, kg.Relationship{
			Type:       RelSelectsFrom,
			From:       fileName,
			To:         target,
			SourceFile: path,
		})
	}

	result.Metadata["tables"] = len(created)
	return result, nil
}

// sqlIdent strips quoting and schema qualifiers from an identifier.
func sqlIdent(raw string) string {
	ident := raw
	if idx := strings.LastIndex(ident, "."); idx >= 0 {
		ident = ident[idx+1:]
	}
	return strings.ToLower(strings.Trim(ident, "\"`"))
}
