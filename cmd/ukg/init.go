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
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// runInit executes the 'init' CLI command, creating a .ukg/project.yaml
// configuration file.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - -y: Non-interactive mode, use all defaults (default: false)
//   - --project-id: Project identifier (default: directory name)
//   - --notebook-converter: Command for notebook conversion
//
// Examples:
//
//	ukg init                                      Interactive setup
//	ukg init -y                                   Use all defaults
//	ukg init --notebook-converter "jupyter nbconvert --to script"
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	nonInteractive := fs.Bool("y", false, "Non-interactive mode (use defaults)")
	projectID := fs.String("project-id", "", "Project identifier")
	converter := fs.String("notebook-converter", "", "Command for notebook conversion (e.g. 'jupyter nbconvert --to script')")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ukg init [options]

Creates .ukg/project.yaml configuration file.

Examples:
  ukg init -y
  ukg init --project-id my-data-platform
  ukg init --notebook-converter "jupyter nbconvert --to script"

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --force to overwrite.\n", configPath)
		os.Exit(1)
	}

	pid := *projectID
	if pid == "" {
		pid = filepath.Base(cwd)
	}
	cfg := DefaultConfig(pid)
	if *converter != "" {
		cfg.Notebook.Converter = *converter
	}

	if !*nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("UKG Project Configuration")
		fmt.Println("=========================")
		fmt.Println()
		cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)
		cfg.Notebook.Converter = prompt(reader, "Notebook converter command (empty to disable)", cfg.Notebook.Converter)
		workersStr := prompt(reader, "Batch workers", fmt.Sprintf("%d", cfg.Batch.Workers))
		var workers int
		if _, err := fmt.Sscanf(workersStr, "%d", &workers); err == nil && workers > 0 {
			cfg.Batch.Workers = workers
		}
		fmt.Println()
	}

	if err := os.MkdirAll(ConfigDir(cwd), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create .ukg directory: %v\n", err)
		os.Exit(1)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .ukg/project.yaml if needed")
	fmt.Println("  2. Run 'ukg extract' to extract a graph from this repository")
	fmt.Println("  3. Run 'ukg batch <root>' to process a whole tree of repositories")
}

// prompt displays an interactive prompt and reads user input from stdin.
//
// If the user presses Enter without providing input, the defaultValue is
// returned.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore adds .ukg/ to the project's .gitignore file if not
// already present. Missing or unwritable .gitignore is silently ignored.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".ukg/" || line == ".ukg" || line == "/.ukg/" || line == "/.ukg" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from repo dir
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}

	_, _ = f.WriteString("\n# UKG configuration\n.ukg/\n")
	fmt.Println("Added .ukg/ to .gitignore")
}
