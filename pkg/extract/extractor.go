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

// Package extract implements the pluggable multi-format extraction
// pipeline: format-specific extractors, the registry that dispatches files
// to them, the directory walker that enumerates candidates, and the
// per-repository pipeline that ties them together.
package extract

import (
	"fmt"

	"github.com/kraklabs/ukg/pkg/kg"
)

// Extractor converts one source file into knowledge graph elements for one
// file-type family.
//
// CanProcess must be cheap and side-effect free beyond an extension or stat
// check. Extract must return an ExtractionResult or fail with an
// *ExtractionError; it never returns an unwrapped failure for a file it
// claimed to support.
type Extractor interface {
	// Name identifies the extractor in logs and metadata.
	Name() string

	// CanProcess reports whether this extractor handles the file.
	CanProcess(path string) bool

	// Extract parses the file and produces its extraction result.
	Extract(path string) (*kg.ExtractionResult, error)

	// SupportedExtensions returns the lowercase extensions (with leading
	// dot) this extractor claims.
	SupportedExtensions() []string
}

// ExtractionError wraps the failure of a single file. It is recoverable at
// the pipeline level: the file is skipped and the repository run continues.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError wraps err for the given file.
func NewExtractionError(file string, err error) *ExtractionError {
	return &ExtractionError{File: file, Err: err}
}
