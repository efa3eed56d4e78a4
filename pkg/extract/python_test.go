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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ukg/pkg/kg"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func entityNames(result *kg.ExtractionResult, entityType string) []string {
	var names []string
	for _, e := range result.Entities {
		if e.Type == entityType {
			names = append(names, e.Name)
		}
	}
	return names
}

func hasRel(result *kg.ExtractionResult, relType, from, to string) bool {
	for _, r := range result.Relationships {
		if r.Type == relType && r.From == from && r.To == to {
			return true
		}
	}
	return false
}

const pythonFixture = `import os
from collections import defaultdict

def load_data(path):
    return parse(path)

class Pipeline:
    def run(self):
        self.validate()
        load_data("x")

    def validate(self):
        pass
`

func TestPythonExtract(t *testing.T) {
	path := writeFixture(t, "pipeline.py", pythonFixture)

	e := NewPythonExtractor(nil)
	result, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "python", result.FileType)
	assert.Equal(t, path, result.SourceFile)

	assert.ElementsMatch(t,
		[]string{"load_data", "Pipeline.run", "Pipeline.validate"},
		entityNames(result, EntityFunction))
	assert.Equal(t, []string{"Pipeline"}, entityNames(result, EntityClass))
	assert.ElementsMatch(t, []string{"os", "collections"}, entityNames(result, EntityModule))

	assert.True(t, hasRel(result, RelHasMethod, "Pipeline", "Pipeline.run"))
	assert.True(t, hasRel(result, RelHasMethod, "Pipeline", "Pipeline.validate"))
	assert.True(t, hasRel(result, RelCalls, "load_data", "parse"))
	assert.True(t, hasRel(result, RelCalls, "Pipeline.run", "validate"))
	assert.True(t, hasRel(result, RelCalls, "Pipeline.run", "load_data"))
	assert.True(t, hasRel(result, RelImports, "pipeline.py", "os"))

	assert.Equal(t, "python", result.Metadata["language"])
	assert.Greater(t, result.Metadata["line_count"].(int), 5)
}

func TestPythonExtractSignatureAttribute(t *testing.T) {
	path := writeFixture(t, "sig.py", "def add(a, b=1):\n    return a + b\n")

	result, err := NewPythonExtractor(nil).Extract(path)
	require.NoError(t, err)

	require.Len(t, result.Entities, 1)
	assert.Equal(t, "def add(a, b=1)", result.Entities[0].Attributes["signature"])
	assert.Equal(t, 1, result.Entities[0].Attributes["line"])
}

func TestPythonExtractSyntaxErrorTolerated(t *testing.T) {
	path := writeFixture(t, "broken.py", "def ok():\n    pass\n\ndef broken(:\n")

	result, err := NewPythonExtractor(nil).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, entityNames(result, EntityFunction), "ok")
}

func TestPythonExtractDeduplicatesEntities(t *testing.T) {
	// Conditional definitions produce the same name twice in the AST.
	path := writeFixture(t, "dup.py", "if True:\n    def f():\n        pass\nelse:\n    def f():\n        pass\n")

	result, err := NewPythonExtractor(nil).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, entityNames(result, EntityFunction))
}

func TestPythonExtractMissingFile(t *testing.T) {
	_, err := NewPythonExtractor(nil).Extract(filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestPythonCanProcess(t *testing.T) {
	e := NewPythonExtractor(nil)
	assert.True(t, e.CanProcess("a.py"))
	assert.True(t, e.CanProcess("a.PY"))
	assert.False(t, e.CanProcess("a.pyc"))
	assert.Equal(t, []string{".py"}, e.SupportedExtensions())
}
