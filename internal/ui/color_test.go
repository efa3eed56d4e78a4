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

package ui

import (
	"testing"

	"github.com/fatih/color"
)

// withoutColor disables color output for the test and restores the prior
// state afterwards.
func withoutColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })
}

func TestInitColors(t *testing.T) {
	original := color.NoColor
	defer func() { color.NoColor = original }()

	tests := []struct {
		name     string
		noColor  bool
		expected bool
	}{
		{name: "colors enabled when noColor is false", noColor: false, expected: false},
		{name: "colors disabled when noColor is true", noColor: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitColors(tt.noColor)
			if color.NoColor != tt.expected {
				t.Errorf("InitColors(%v): color.NoColor = %v, expected %v",
					tt.noColor, color.NoColor, tt.expected)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	withoutColor(t)

	if got := Label("Repositories:"); got != "Repositories:" {
		t.Errorf("Label() = %q, expected %q", got, "Repositories:")
	}
}

func TestDimText(t *testing.T) {
	withoutColor(t)

	if got := DimText("/repos/data-pipeline"); got != "/repos/data-pipeline" {
		t.Errorf("DimText() = %q, expected %q", got, "/repos/data-pipeline")
	}
}

func TestCountText(t *testing.T) {
	withoutColor(t)

	tests := []struct {
		count    int
		expected string
	}{
		{count: 128, expected: "128"},
		{count: 0, expected: "0"},
		{count: -1, expected: "-1"},
	}

	for _, tt := range tests {
		if got := CountText(tt.count); got != tt.expected {
			t.Errorf("CountText(%d) = %q, expected %q", tt.count, got, tt.expected)
		}
	}
}

func TestColorVariablesInitialized(t *testing.T) {
	if Red == nil {
		t.Error("Red color not initialized")
	}
	if Yellow == nil {
		t.Error("Yellow color not initialized")
	}
	if Green == nil {
		t.Error("Green color not initialized")
	}
	if Cyan == nil {
		t.Error("Cyan color not initialized")
	}
	if Bold == nil {
		t.Error("Bold color not initialized")
	}
	if Dim == nil {
		t.Error("Dim color not initialized")
	}
}

// TestMessageFunctions exercises every console helper with batch-run
// messages. They write to stdout, so the check is that they run cleanly.
func TestMessageFunctions(t *testing.T) {
	withoutColor(t)

	t.Run("Success", func(t *testing.T) {
		Success("batch report written")
	})

	t.Run("Successf", func(t *testing.T) {
		Successf("processed %d of %d repositories", 4, 5)
	})

	t.Run("Warning", func(t *testing.T) {
		Warning("no extractor claimed file")
	})

	t.Run("Warningf", func(t *testing.T) {
		Warningf("%d files failed extraction", 3)
	})

	t.Run("Error", func(t *testing.T) {
		Error("repository walk failed")
	})

	t.Run("Errorf", func(t *testing.T) {
		Errorf("repo %s failed: %s", "legacy-etl", "walk failed")
	})

	t.Run("Info", func(t *testing.T) {
		Info("discovering repositories")
	})

	t.Run("Infof", func(t *testing.T) {
		Infof("found %d repositories", 12)
	})

	t.Run("Header", func(t *testing.T) {
		Header("Batch Extraction Summary")
	})

	t.Run("SubHeader", func(t *testing.T) {
		SubHeader("Failed repositories")
	})
}

func TestTextHelperEdgeCases(t *testing.T) {
	withoutColor(t)

	t.Run("empty label", func(t *testing.T) {
		if got := Label(""); got != "" {
			t.Errorf("Label(\"\") = %q, expected empty string", got)
		}
	})

	t.Run("empty dim text", func(t *testing.T) {
		if got := DimText(""); got != "" {
			t.Errorf("DimText(\"\") = %q, expected empty string", got)
		}
	})

	t.Run("quoted entity name in label", func(t *testing.T) {
		in := `Entity: "users" (table)`
		if got := Label(in); got != in {
			t.Errorf("Label() with quoted name = %q, expected %q", got, in)
		}
	})
}
