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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ukg/pkg/kg"
)

// fakeExtractor claims a fixed extension set and records its name in
// every result, so dispatch tests can see who won.
type fakeExtractor struct {
	name string
	exts []string
}

func (f *fakeExtractor) Name() string                  { return f.name }
func (f *fakeExtractor) SupportedExtensions() []string { return f.exts }

func (f *fakeExtractor) CanProcess(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (f *fakeExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	return &kg.ExtractionResult{
		SourceFile: path,
		FileType:   f.name,
	}, nil
}

func TestRegistryFirstRegisteredWins(t *testing.T) {
	r := NewRegistry(nil)
	first := &fakeExtractor{name: "first", exts: []string{".py"}}
	second := &fakeExtractor{name: "second", exts: []string{".py", ".sql"}}
	r.Register(first)
	r.Register(second)

	got := r.Resolve("main.py")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Name())

	// The later registration still serves extensions the first does not claim.
	got = r.Resolve("schema.sql")
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Name())
}

func TestRegistryResolveUnclaimed(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeExtractor{name: "py", exts: []string{".py"}})

	assert.Nil(t, r.Resolve("readme.md"))
}

func TestRegistryResolveDeterministic(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeExtractor{name: "a", exts: []string{".py"}})
	r.Register(&fakeExtractor{name: "b", exts: []string{".py"}})

	for i := 0; i < 10; i++ {
		assert.Equal(t, "a", r.Resolve("x.py").Name())
	}
}

func TestRegistrySupportedExtensionsSortedUnion(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeExtractor{name: "a", exts: []string{".sql", ".py"}})
	r.Register(&fakeExtractor{name: "b", exts: []string{".py", ".csv"}})

	assert.Equal(t, []string{".csv", ".py", ".sql"}, r.SupportedExtensions())
}

func TestDefaultRegistryCoverage(t *testing.T) {
	r := NewDefaultRegistry(nil, NotebookOptions{})

	exts := r.SupportedExtensions()
	for _, want := range []string{".py", ".ipynb", ".sql", ".js", ".jsx", ".ts", ".tsx", ".docx", ".pptx", ".xlsx", ".xls", ".csv"} {
		assert.Contains(t, exts, want)
	}

	cases := map[string]string{
		"app.py":         "python",
		"analysis.ipynb": "notebook",
		"schema.sql":     "sql",
		"index.ts":       "javascript",
		"report.docx":    "office",
	}
	for path, wantName := range cases {
		e := r.Resolve(path)
		require.NotNil(t, e, path)
		assert.Equal(t, wantName, e.Name(), path)
	}
}
