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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("my-project")

	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.NotEmpty(t, cfg.Batch.OutputDir)
	assert.Contains(t, cfg.Extraction.Exclude, "**/node_modules/**")
	assert.Empty(t, cfg.Notebook.Converter, "notebook conversion is off by default")
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")

	cfg := DefaultConfig("round-trip")
	cfg.Notebook.Converter = "jupyter nbconvert --to script"
	cfg.Batch.Workers = 8
	cfg.Extraction.Exclude = []string{"**/generated/**"}

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "round-trip", loaded.ProjectID)
	assert.Equal(t, "jupyter nbconvert --to script", loaded.Notebook.Converter)
	assert.Equal(t, 8, loaded.Batch.Workers)
	assert.Equal(t, []string{"**/generated/**"}, loaded.Extraction.Exclude)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "does", "not", "exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_id: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigClampsWorkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  workers: 0\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", ".ukg"), ConfigDir("/repo"))
	assert.Equal(t, filepath.Join("/repo", ".ukg", "project.yaml"), ConfigPath("/repo"))
}
