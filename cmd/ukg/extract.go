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
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kraklabs/ukg/internal/errors"
	"github.com/kraklabs/ukg/internal/output"
	"github.com/kraklabs/ukg/internal/ui"
	"github.com/kraklabs/ukg/pkg/extract"
	"github.com/kraklabs/ukg/pkg/kg"
)

// exportExtensions maps export formats to default file extensions.
var exportExtensions = map[string]string{
	"json":    ".json",
	"cypher":  ".cypher",
	"graphml": ".graphml",
}

// runExtract executes the 'extract' CLI command, building a knowledge graph
// from a single repository.
//
// Flags:
//   - --format: Export format, one of json, cypher, graphml (default: json)
//   - --output: Output file path (default: knowledge_graph.<ext>)
//   - --notebook-converter: Override the configured notebook converter
//   - --debug: Enable debug logging
//
// Examples:
//
//	ukg extract                        Extract from current directory
//	ukg extract /src/repo              Extract from a specific path
//	ukg extract --format cypher --output graph.cypher
func runExtract(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	format := fs.String("format", "json", "Export format: json, cypher, graphml")
	outPath := fs.String("output", "", "Output file path (default: knowledge_graph.<ext>)")
	converter := fs.String("notebook-converter", "", "Override the configured notebook converter command")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ukg extract [path] [options]

Extracts a knowledge graph from a single repository and exports it.
The path defaults to the current directory.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	repoPath := "."
	if fs.NArg() > 0 {
		repoPath = fs.Arg(0)
	}
	absPath, err := filepath.Abs(repoPath)
	if err == nil {
		repoPath = absPath
	}

	if _, ok := exportExtensions[*format]; !ok {
		errors.FatalError(errors.NewInputError(
			fmt.Sprintf("Unknown export format %q", *format),
			"Supported formats are json, cypher and graphml",
			"Pass one of: --format json, --format cypher, --format graphml",
		), globals.JSON)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load UKG configuration",
			err.Error(),
			"Fix the YAML syntax or delete the file to use defaults",
			err,
		), globals.JSON)
	}

	logger := newLogger(*debug)

	notebookCmd := cfg.Notebook.Converter
	if *converter != "" {
		notebookCmd = *converter
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	registry := extract.NewDefaultRegistry(logger, extract.NotebookOptions{
		ConverterCmd: notebookCmd,
		ScratchDir:   cfg.Notebook.ScratchDir,
	})
	walker := extract.NewWalker(logger, extract.WalkerOptions{
		ExcludeGlobs: cfg.Extraction.Exclude,
	})
	pipeline := extract.NewPipeline(registry, walker, logger)

	progress := NewProgressConfig(globals)
	spinner := NewSpinner(progress, "extracting "+filepath.Base(repoPath))
	var spinDone chan struct{}
	if spinner != nil {
		spinDone = make(chan struct{})
		go func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-spinDone:
					return
				case <-ticker.C:
					_ = spinner.Add(1)
				}
			}
		}()
	}

	agg := kg.NewAggregator(logger)
	result, err := pipeline.RunWithAggregator(ctx, repoPath, agg)
	if spinner != nil {
		close(spinDone)
		_ = spinner.Finish()
	}
	if err != nil {
		errors.FatalError(errors.NewNotFoundError(
			"Cannot process repository",
			err.Error(),
			"Check that the path exists and is readable",
		), globals.JSON)
	}

	target := *outPath
	if target == "" {
		target = "knowledge_graph" + exportExtensions[*format]
	}
	if err := agg.Export(target, *format); err != nil {
		errors.FatalError(errors.NewExportError(
			"Cannot export knowledge graph",
			err.Error(),
			"Check the output path is writable",
			err,
		), globals.JSON)
	}

	if globals.JSON {
		_ = output.JSON(map[string]any{
			"repo":        repoPath,
			"output":      target,
			"format":      *format,
			"files_found": result.FilesFound,
			"statistics":  result.Stats,
			"failed":      result.FailedFiles,
			"unresolved":  result.UnresolvedFiles,
		})
		return
	}

	printExtractSummary(repoPath, target, result, agg)
}

// printExtractSummary prints a human-readable run summary.
func printExtractSummary(repoPath, target string, result *extract.PipelineResult, agg *kg.Aggregator) {
	fmt.Println()
	ui.Header("Extraction Complete")
	fmt.Printf("Repository: %s\n", repoPath)
	fmt.Printf("Files Found: %s\n", ui.CountText(result.FilesFound))
	fmt.Printf("Files Processed: %s\n", ui.CountText(result.Stats.TotalFiles))
	fmt.Printf("Entities: %s\n", ui.CountText(result.Stats.TotalEntities))
	fmt.Printf("Relationships: %s\n", ui.CountText(result.Stats.TotalRelationships))
	fmt.Printf("Duration: %s\n", result.Duration)

	if len(result.Stats.FileTypes) > 0 {
		fmt.Println("\nFile Types:")
		for ft, count := range result.Stats.FileTypes {
			fmt.Printf("  %s: %d\n", ft, count)
		}
	}

	if len(result.FailedFiles) > 0 {
		fmt.Println()
		ui.Warningf("%d files failed extraction", len(result.FailedFiles))
		for file, msg := range result.FailedFiles {
			fmt.Printf("  %s: %s\n", file, msg)
		}
	}
	if len(result.UnresolvedFiles) > 0 {
		ui.Warningf("%d files had no extractor", len(result.UnresolvedFiles))
	}
	if dangling := agg.DanglingRelationships(); len(dangling) > 0 {
		fmt.Printf("%s %d relationships reference entities outside the graph\n",
			ui.DimText("note:"), len(dangling))
	}

	fmt.Println()
	ui.Successf("Knowledge graph written to %s", target)
}

// newLogger builds the standard text logger used by all commands.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	return ctx, cancel
}
