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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notebookFixture = `{
  "cells": [
    {"cell_type": "markdown", "source": "# Analysis"},
    {"cell_type": "code", "source": ["import pandas\n", "\n", "def load():\n", "    return pandas.read_csv('data.csv')\n"]},
    {"cell_type": "code", "source": "def summarize(df):\n    return df.describe()\n"}
  ],
  "metadata": {"kernelspec": {"name": "python3", "language": "python"}},
  "nbformat": 4
}`

func TestNotebookExtract(t *testing.T) {
	path := writeFixture(t, "analysis.ipynb", notebookFixture)

	e := NewNotebookExtractor(nil, NotebookOptions{})
	result, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "jupyter_notebook", result.FileType)
	assert.Empty(t, result.ConvertedArtifact)

	// Cells with string and list sources both contribute code.
	assert.Contains(t, entityNames(result, EntityFunction), "load")
	assert.Contains(t, entityNames(result, EntityFunction), "summarize")
	assert.Contains(t, entityNames(result, EntityModule), "pandas")

	assert.Equal(t, "python3", result.Metadata["kernel"])
	assert.Equal(t, 2, result.Metadata["code_cells"])
	assert.Equal(t, 1, result.Metadata["markdown_cells"])
	assert.Equal(t, 4, result.Metadata["nbformat"])
}

func TestNotebookExtractWithConverter(t *testing.T) {
	path := writeFixture(t, "pipeline.ipynb", notebookFixture)

	// A converter that ignores the notebook and writes a known script.
	dir := t.TempDir()
	converter := filepath.Join(dir, "convert.sh")
	script := "#!/bin/sh\nprintf 'def from_converter():\\n    pass\\n' > \"$2\"\n"
	require.NoError(t, os.WriteFile(converter, []byte(script), 0o755))

	scratch := filepath.Join(dir, "scratch")
	e := NewNotebookExtractor(nil, NotebookOptions{ConverterCmd: converter, ScratchDir: scratch})
	result, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(scratch, "pipeline.py"), result.ConvertedArtifact)
	assert.Equal(t, []string{"from_converter"}, entityNames(result, EntityFunction))
}

func TestNotebookExtractConverterFailureDegrades(t *testing.T) {
	path := writeFixture(t, "broken.ipynb", notebookFixture)

	e := NewNotebookExtractor(nil, NotebookOptions{ConverterCmd: "false"})
	result, err := e.Extract(path)
	require.NoError(t, err)

	// Converter failure falls back to direct cell analysis.
	assert.Empty(t, result.ConvertedArtifact)
	assert.Contains(t, entityNames(result, EntityFunction), "load")
}

func TestNotebookExtractBlankConverterDegrades(t *testing.T) {
	path := writeFixture(t, "spaces.ipynb", notebookFixture)

	// A whitespace-only command passes the non-empty check but has no
	// program to run; it must degrade like any other converter failure.
	e := NewNotebookExtractor(nil, NotebookOptions{ConverterCmd: "   "})
	result, err := e.Extract(path)
	require.NoError(t, err)

	assert.Empty(t, result.ConvertedArtifact)
	assert.Contains(t, entityNames(result, EntityFunction), "load")
}

func TestNotebookExtractInvalidJSON(t *testing.T) {
	path := writeFixture(t, "corrupt.ipynb", "{not json")

	_, err := NewNotebookExtractor(nil, NotebookOptions{}).Extract(path)
	require.Error(t, err)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestNotebookExtractNoCells(t *testing.T) {
	path := writeFixture(t, "blank.ipynb", `{"cells": [], "metadata": {}, "nbformat": 4}`)

	result, err := NewNotebookExtractor(nil, NotebookOptions{}).Extract(path)
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.Equal(t, 0, result.Metadata["code_cells"])
}
