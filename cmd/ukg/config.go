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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the .ukg/project.yaml configuration.
type Config struct {
	// ProjectID names the project in logs and reports.
	ProjectID string `yaml:"project_id"`

	Extraction ExtractionConfig `yaml:"extraction"`
	Notebook   NotebookConfig   `yaml:"notebook"`
	Batch      BatchConfig      `yaml:"batch"`
}

// ExtractionConfig controls the per-repository file walk.
type ExtractionConfig struct {
	// Exclude lists glob patterns matched against repo-relative paths.
	// Hidden directories and checkpoint directories are always excluded.
	Exclude []string `yaml:"exclude"`
}

// NotebookConfig controls optional notebook-to-script conversion.
type NotebookConfig struct {
	// Converter is the external command used to convert notebooks, for
	// example "jupyter nbconvert --to script". Empty disables conversion
	// and notebooks are processed from their raw cell contents.
	Converter string `yaml:"converter"`

	// ScratchDir is where conversion artifacts are written.
	// Empty uses the system temp directory.
	ScratchDir string `yaml:"scratch_dir"`
}

// BatchConfig holds defaults for the batch command.
type BatchConfig struct {
	// Workers is the parallel worker pool size.
	Workers int `yaml:"workers"`

	// OutputDir is where batch reports and indexes are written.
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Extraction: ExtractionConfig{
			Exclude: []string{
				"**/node_modules/**",
				"**/vendor/**",
				"**/__pycache__/**",
				"**/dist/**",
				"**/build/**",
			},
		},
		Notebook: NotebookConfig{},
		Batch: BatchConfig{
			Workers:   4,
			OutputDir: "ukg-output",
		},
	}
}

// ConfigDir returns the .ukg directory under the given root.
func ConfigDir(root string) string {
	return filepath.Join(root, ".ukg")
}

// ConfigPath returns the path to project.yaml under the given root.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), "project.yaml")
}

// LoadConfig loads configuration from the given path. An empty path means
// ./.ukg/project.yaml. A missing file is not an error; defaults are
// returned so every command works without prior 'ukg init'.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the user's own flag
	if err != nil {
		if os.IsNotExist(err) {
			cwd, _ := os.Getwd()
			return DefaultConfig(filepath.Base(cwd)), nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if cfg.Batch.Workers < 1 {
		cfg.Batch.Workers = 4
	}
	return cfg, nil
}

// SaveConfig writes the configuration as YAML to the given path.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
