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
// Package main implements the UKG CLI for extracting unified knowledge
// graphs from repositories.
//
// Usage:
//
//	ukg init                      Create .ukg/project.yaml configuration
//	ukg extract [path]            Extract a knowledge graph from one repository
//	ukg batch <repos_root>        Process every repository under a root
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/ukg/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags carries flags shared by every command.
type GlobalFlags struct {
	// JSON switches command output to machine-readable JSON on stdout.
	// Progress bars are suppressed in JSON mode.
	JSON bool

	// NoColor disables colored terminal output.
	NoColor bool

	// Quiet suppresses progress bars and non-essential output.
	Quiet bool
}

// main is the entry point for the UKG CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to .ukg/project.yaml configuration file
//   - --json: Machine-readable JSON output
//   - --no-color: Disable colored output
//   - -q: Quiet mode (no progress bars)
//
// Commands:
//   - init: Create .ukg/project.yaml configuration
//   - extract: Extract a knowledge graph from a single repository
//   - batch: Process every git repository under a root directory
func main() {
	// Global flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .ukg/project.yaml (default: ./.ukg/project.yaml)")
		jsonOut     = flag.Bool("json", false, "Machine-readable JSON output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		quiet       = flag.Bool("q", false, "Quiet mode (no progress bars)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `UKG - Unified Knowledge Graph extractor

UKG walks repositories, extracts entities and relationships from
source code, notebooks, SQL and office documents, and exports the
result as a knowledge graph in JSON, Cypher or GraphML form.

Usage:
  ukg <command> [options]

Commands:
  init          Create .ukg/project.yaml configuration
  extract       Extract a knowledge graph from one repository
  batch         Process every git repository under a root directory

Global Options:
  --config      Path to .ukg/project.yaml
  --json        Machine-readable JSON output
  --no-color    Disable colored output
  -q            Quiet mode (no progress bars)
  --version     Show version and exit

Examples:
  ukg init                           Create configuration interactively
  ukg extract                        Extract graph from current directory
  ukg extract /src/repo --format cypher
  ukg batch /data/repos              Process all repos, write batch report
  ukg batch /data/repos --filter api --workers 8
  ukg batch /data/repos --no-parallel

For detailed command help: ukg <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("ukg version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{
		JSON:    *jsonOut,
		NoColor: *noColor,
		Quiet:   *quiet || *jsonOut,
	}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "extract":
		runExtract(cmdArgs, *configPath, globals)
	case "batch":
		runBatch(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
