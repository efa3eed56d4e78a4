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

package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo is one discovered repository root.
type Repo struct {
	Path string
	Name string

	// Commit and Branch describe HEAD at discovery time; empty when the
	// repository has no commits yet or HEAD cannot be read.
	Commit string
	Branch string
}

// DiscoverRepos finds every directory under root containing a .git
// directory, optionally narrowed to names containing filter. Nested
// repositories (submodule checkouts, vendored repos) are discovered as
// their own units of work. Results are in lexical path order for
// reproducible batch runs.
//
// Each candidate is opened with go-git to confirm it is a readable
// repository and to capture its HEAD; candidates that fail to open are
// skipped with a warning.
func DiscoverRepos(root string, filter string, logger *slog.Logger) ([]Repo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var repos []Repo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("discover.walk.error", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != ".git" {
			// Don't descend into other hidden directories.
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		repoPath := filepath.Dir(path)
		name := filepath.Base(repoPath)
		if filter != "" && !strings.Contains(name, filter) {
			return filepath.SkipDir
		}

		repo := Repo{Path: repoPath, Name: name}
		if gr, openErr := git.PlainOpen(repoPath); openErr != nil {
			logger.Warn("discover.repo.unreadable", "path", repoPath, "err", openErr)
			return filepath.SkipDir
		} else if head, headErr := gr.Head(); headErr == nil {
			repo.Commit = head.Hash().String()
			if head.Name().IsBranch() {
				repo.Branch = head.Name().Short()
			} else if head.Name() == plumbing.HEAD {
				repo.Branch = "detached"
			}
		}

		repos = append(repos, repo)
		// Never walk into .git itself.
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("discover repos under %s: %w", root, err)
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Path < repos[j].Path })

	logger.Info("discover.complete", "root", root, "repos", len(repos), "filter", filter)
	return repos, nil
}
