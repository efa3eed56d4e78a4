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
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a git repository at root/name, optionally with one
// commit so HEAD resolves.
func initRepo(t *testing.T, root, name string, commit bool) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(path, 0o755))

	r, err := git.PlainInit(path, false)
	require.NoError(t, err)

	if commit {
		require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("# "+name+"\n"), 0o644))
		wt, err := r.Worktree()
		require.NoError(t, err)
		_, err = wt.Add("README.md")
		require.NoError(t, err)
		_, err = wt.Commit("initial commit", &git.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}
	return path
}

func repoNames(repos []Repo) []string {
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names
}

func TestDiscoverRepos(t *testing.T) {
	root := t.TempDir()
	initRepo(t, root, "beta", true)
	initRepo(t, root, "alpha", true)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-repo"), 0o755))

	repos, err := DiscoverRepos(root, "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, repoNames(repos))
	for _, r := range repos {
		assert.Equal(t, filepath.Join(root, r.Name), r.Path)
	}
}

func TestDiscoverReposFilter(t *testing.T) {
	root := t.TempDir()
	initRepo(t, root, "data-pipeline", true)
	initRepo(t, root, "web-frontend", true)
	initRepo(t, root, "data-warehouse", true)

	repos, err := DiscoverRepos(root, "data", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"data-pipeline", "data-warehouse"}, repoNames(repos))
}

func TestDiscoverReposSkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()
	initRepo(t, root, "visible", true)
	initRepo(t, filepath.Join(root, ".cache"), "shadow", true)

	repos, err := DiscoverRepos(root, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"visible"}, repoNames(repos))
}

func TestDiscoverReposNested(t *testing.T) {
	root := t.TempDir()
	outer := initRepo(t, root, "outer", true)
	initRepo(t, outer, "vendored", true)

	repos, err := DiscoverRepos(root, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "vendored"}, repoNames(repos))
}

func TestDiscoverReposHead(t *testing.T) {
	root := t.TempDir()
	initRepo(t, root, "committed", true)
	initRepo(t, root, "fresh", false)

	repos, err := DiscoverRepos(root, "", nil)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	byName := make(map[string]Repo, len(repos))
	for _, r := range repos {
		byName[r.Name] = r
	}

	assert.Len(t, byName["committed"].Commit, 40)
	assert.NotEmpty(t, byName["committed"].Branch)

	// A repository with no commits has no resolvable HEAD.
	assert.Empty(t, byName["fresh"].Commit)
	assert.Empty(t, byName["fresh"].Branch)
}

func TestDiscoverReposEmptyRoot(t *testing.T) {
	repos, err := DiscoverRepos(t.TempDir(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, repos)
}
