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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsFixture = `import { fetchRows } from './db';

function loadAll() {
  return fetchRows();
}

const transform = (rows) => {
  return rows.map(normalize);
};

class Exporter {
  write(rows) {
    loadAll();
  }
}
`

func TestJavaScriptExtract(t *testing.T) {
	path := writeFixture(t, "exporter.js", jsFixture)

	e := NewJavaScriptExtractor(nil)
	result, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "javascript", result.FileType)
	assert.ElementsMatch(t,
		[]string{"loadAll", "transform", "Exporter.write"},
		entityNames(result, EntityFunction))
	assert.Equal(t, []string{"Exporter"}, entityNames(result, EntityClass))
	assert.Equal(t, []string{"./db"}, entityNames(result, EntityModule))

	assert.True(t, hasRel(result, RelImports, "exporter.js", "./db"))
	assert.True(t, hasRel(result, RelHasMethod, "Exporter", "Exporter.write"))
	assert.True(t, hasRel(result, RelCalls, "loadAll", "fetchRows"))
	assert.True(t, hasRel(result, RelCalls, "Exporter.write", "loadAll"))
}

func TestJavaScriptArrowFunctionAttributes(t *testing.T) {
	path := writeFixture(t, "arrow.js", "const go = () => 1;\n")

	result, err := NewJavaScriptExtractor(nil).Extract(path)
	require.NoError(t, err)

	require.Len(t, entityNames(result, EntityFunction), 1)
	assert.Equal(t, "arrow", result.Entities[0].Attributes["kind"])
}

func TestTypeScriptExtract(t *testing.T) {
	src := `interface Row { id: number }

export function parseRow(raw: string): Row {
  return JSON.parse(raw);
}
`
	path := writeFixture(t, "rows.ts", src)

	result, err := NewJavaScriptExtractor(nil).Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "typescript", result.FileType)
	assert.Contains(t, entityNames(result, EntityFunction), "parseRow")
	assert.True(t, hasRel(result, RelCalls, "parseRow", "parse"))
}

func TestTSXExtract(t *testing.T) {
	src := `export function Button() {
  return <button>Go</button>;
}
`
	path := writeFixture(t, "button.tsx", src)

	result, err := NewJavaScriptExtractor(nil).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, entityNames(result, EntityFunction), "Button")
}

func TestJavaScriptCanProcess(t *testing.T) {
	e := NewJavaScriptExtractor(nil)
	for _, ext := range []string{"a.js", "a.jsx", "a.ts", "a.tsx", "a.TS"} {
		assert.True(t, e.CanProcess(ext), ext)
	}
	assert.False(t, e.CanProcess("a.json"))
}
