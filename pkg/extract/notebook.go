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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kraklabs/ukg/pkg/kg"
)

// NotebookOptions configures the Jupyter notebook extractor.
type NotebookOptions struct {
	// ConverterCmd is an external notebook-to-script converter invoked as
	// `cmd <notebook> <output.py>`. Empty disables conversion and the
	// extractor analyzes code cells directly.
	ConverterCmd string

	// ScratchDir receives converted script artifacts. Callers running in
	// parallel must namespace it per unit of work. Empty falls back to the
	// system temp directory.
	ScratchDir string
}

// NotebookExtractor extracts knowledge from Jupyter notebooks. Code cells
// are concatenated and analyzed with the Python extractor; notebook-level
// metadata (kernel, cell counts) is recorded alongside. When a converter
// command is configured, the notebook is first converted to a script
// artifact; converter failure degrades to direct cell analysis and never
// fails the file.
type NotebookExtractor struct {
	opts   NotebookOptions
	py     *PythonExtractor
	logger *slog.Logger
}

// NewNotebookExtractor creates a notebook extractor.
func NewNotebookExtractor(logger *slog.Logger, opts NotebookOptions) *NotebookExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotebookExtractor{
		opts:   opts,
		py:     NewPythonExtractor(logger),
		logger: logger,
	}
}

func (e *NotebookExtractor) Name() string { return "notebook" }

func (e *NotebookExtractor) SupportedExtensions() []string {
	return []string{".ipynb"}
}

func (e *NotebookExtractor) CanProcess(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ipynb")
}

// notebook mirrors the nbformat JSON schema, limited to what we read.
type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Name     string `json:"name"`
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
	NBFormat int `json:"nbformat"`
}

type notebookCell struct {
	CellType string   `json:"cell_type"`
	Source   anyLines `json:"source"`
}

// anyLines accepts the nbformat source field, which is either a string or
// a list of strings.
type anyLines string

func (l *anyLines) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = anyLines(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*l = anyLines(strings.Join(lines, ""))
	return nil
}

func (e *NotebookExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, NewExtractionError(path, fmt.Errorf("parse notebook: %w", err))
	}

	var codeCells, markdownCells int
	var code strings.Builder
	for _, cell := range nb.Cells {
		switch cell.CellType {
		case "code":
			codeCells++
			code.WriteString(string(cell.Source))
			code.WriteString("\n")
		case "markdown":
			markdownCells++
		}
	}

	converted := ""
	if e.opts.ConverterCmd != "" {
		converted, err = e.convert(path)
		if err != nil {
			e.logger.Warn("extract.notebook.convert.error", "path", path, "err", err)
			converted = ""
		}
	}

	// Prefer the converted artifact when available; it reflects the same
	// cells the converter saw.
	source := code.String()
	if converted != "" {
		if scriptData, readErr := os.ReadFile(converted); readErr == nil {
			source = string(scriptData)
		}
	}

	pyResult, err := e.py.extractSource([]byte(source), path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}

	result := &kg.ExtractionResult{
		SourceFile:        path,
		FileType:          "jupyter_notebook",
		Entities:          pyResult.Entities,
		Relationships:     pyResult.Relationships,
		ConvertedArtifact: converted,
		Metadata: map[string]any{
			"kernel":         nb.Metadata.KernelSpec.Name,
			"language":       nb.Metadata.KernelSpec.Language,
			"code_cells":     codeCells,
			"markdown_cells": markdownCells,
			"nbformat":       nb.NBFormat,
		},
	}
	return result, nil
}

// convert runs the external converter, writing the script artifact into
// the scratch directory. The subprocess is synchronous and opaque; a hung
// converter stalls only the worker running this extraction.
func (e *NotebookExtractor) convert(path string) (string, error) {
	scratch := e.opts.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(scratch, base+".py")

	parts := strings.Fields(e.opts.ConverterCmd)
	if len(parts) == 0 {
		return "", fmt.Errorf("converter command %q is blank", e.opts.ConverterCmd)
	}
	args := append(parts[1:], path, outPath)
	cmd := exec.Command(parts[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("converter %q: %w: %s", e.opts.ConverterCmd, err, strings.TrimSpace(string(out)))
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("converter produced no artifact: %w", err)
	}
	return outPath, nil
}
