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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Walker enumerates candidate files under a repository root. Any path with
// a component starting with "." is excluded, which covers version-control
// metadata and notebook checkpoint directories alike. Results are returned
// in lexical path order so repeated walks over an unchanged tree are
// reproducible.
type Walker struct {
	logger   *slog.Logger
	excludes []glob.Glob
}

// WalkerOptions configures a Walker.
type WalkerOptions struct {
	// ExcludeGlobs are path patterns (slash-separated, ** supported)
	// matched against paths relative to the walk root.
	ExcludeGlobs []string
}

// NewWalker creates a walker. Invalid exclude patterns are reported and
// skipped rather than failing the walk.
func NewWalker(logger *slog.Logger, opts WalkerOptions) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Walker{logger: logger}
	for _, pattern := range opts.ExcludeGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			logger.Warn("walker.exclude.invalid", "pattern", pattern, "err", err)
			continue
		}
		w.excludes = append(w.excludes, g)
	}
	return w
}

// Walk returns every file under root whose extension is in extensions,
// skipping hidden directory segments and excluded paths. With recursive
// false only the root directory itself is scanned. Extensions are matched
// case-insensitively; a path matched by more than one extension appears
// once.
func (w *Walker) Walk(root string, recursive bool, extensions []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	seen := make(map[string]bool)
	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission errors degrade completeness, not the walk.
			w.logger.Warn("walker.error", "path", path, "err", err)
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive {
				return filepath.SkipDir
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if w.excluded(root, path) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !wanted[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if w.excluded(root, path) {
			return nil
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// excluded matches the root-relative slash path against the exclude globs.
func (w *Walker) excluded(root, path string) bool {
	if len(w.excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
