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

// Package batch fans repository extraction out across many repository
// roots with per-unit fault isolation and order-independent aggregation.
package batch

import "github.com/kraklabs/ukg/pkg/kg"

// EventType classifies orchestrator events.
type EventType string

const (
	// EventStarted is emitted when a repository begins processing.
	// Only sequential runs emit it: in parallel mode workers pick up jobs
	// concurrently and the collector learns about a repository when its
	// outcome arrives, so consumers must not rely on a started event
	// preceding every completion.
	EventStarted EventType = "started"

	// EventCompleted is emitted when a repository finishes, whatever its
	// status; Outcome is always set.
	EventCompleted EventType = "completed"
)

// Event is one progress notification from the orchestrator. The engine
// never writes to the console; callers render events however they like,
// or ignore them.
type Event struct {
	Type      EventType
	Repo      string
	RepoName  string
	Completed int // repos completed so far, including this one
	Total     int
	Outcome   *kg.RepoOutcome // set for EventCompleted
}

// EventFunc receives orchestrator events. It is called from the collector
// goroutine only, never concurrently.
type EventFunc func(Event)
