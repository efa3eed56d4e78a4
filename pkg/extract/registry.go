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
	"sort"
)

// Registry holds extractors in registration order and resolves a file to
// the first extractor that claims it. Registration order is the dispatch
// contract: when two extractors could handle the same extension, the one
// registered first wins. That is documented ambiguity, not an error.
type Registry struct {
	extractors []Extractor
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// NewDefaultRegistry creates a registry with all built-in extractors in
// their canonical order: Python, notebook, SQL, JavaScript/TypeScript,
// Office documents.
func NewDefaultRegistry(logger *slog.Logger, opts NotebookOptions) *Registry {
	r := NewRegistry(logger)
	r.Register(NewPythonExtractor(logger))
	r.Register(NewNotebookExtractor(logger, opts))
	r.Register(NewSQLExtractor(logger))
	r.Register(NewJavaScriptExtractor(logger))
	r.Register(NewOfficeExtractor(logger))
	return r
}

// Register appends an extractor. Later registrations can only shadow
// earlier ones for extensions the earlier ones do not claim.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
	r.logger.Debug("registry.register", "extractor", e.Name(), "extensions", e.SupportedExtensions())
}

// Resolve returns the first registered extractor whose CanProcess accepts
// the file, or nil when no extractor claims it. Resolution is deterministic
// for a fixed registration order.
func (r *Registry) Resolve(path string) Extractor {
	for _, e := range r.extractors {
		if e.CanProcess(path) {
			return e
		}
	}
	return nil
}

// SupportedExtensions returns the sorted union of extensions across all
// registered extractors. The walker uses this as its candidate filter.
func (r *Registry) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, e := range r.extractors {
		for _, ext := range e.SupportedExtensions() {
			set[ext] = true
		}
	}

	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extractors returns the registered extractors in registration order.
func (r *Registry) Extractors() []Extractor {
	return r.extractors
}
