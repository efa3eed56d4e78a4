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

package kg

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Export formats.
const (
	FormatJSON    = "json"
	FormatCypher  = "cypher"
	FormatGraphML = "graphml"
)

// UnsupportedFormatError reports an export format the engine does not
// implement. The in-memory graph is left untouched.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %q (supported: json, cypher, graphml)", e.Format)
}

// Export serializes the graph to path in the given format. It is a pure
// read of the graph; no merges may run concurrently with an export.
func (a *Aggregator) Export(path, format string) error {
	switch format {
	case FormatJSON:
		return a.exportJSON(path)
	case FormatCypher:
		return a.exportCypher(path)
	case FormatGraphML:
		return a.exportGraphML(path)
	default:
		return &UnsupportedFormatError{Format: format}
	}
}

func (a *Aggregator) exportJSON(path string) error {
	data, err := json.MarshalIndent(&a.graph, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// exportCypher emits one CREATE statement per entity and one
// MATCH-and-CREATE per relationship. Values are emitted verbatim; the
// output is intended for trusted offline import, not for execution against
// a shared database with untrusted graph content.
func (a *Aggregator) exportCypher(path string) error {
	var b strings.Builder

	for _, e := range a.graph.Entities {
		fmt.Fprintf(&b, "CREATE (:%s {name: '%s', source_file: '%s'})\n",
			cypherLabel(e.Type), e.Name, e.SourceFile)
	}
	for _, r := range a.graph.Relationships {
		fmt.Fprintf(&b, "MATCH (a), (b) WHERE a.name='%s' AND b.name='%s' CREATE (a)-[:%s]->(b)\n",
			r.From, r.To, cypherLabel(r.Type))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write cypher: %w", err)
	}
	return nil
}

// cypherLabel normalizes an entity/relationship type into a usable label.
func cypherLabel(t string) string {
	if t == "" {
		return "Entity"
	}
	return strings.ReplaceAll(t, " ", "_")
}

// graphML mirrors the minimal GraphML node/edge schema.
type graphML struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
}

type graphMLEdge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Type   string `xml:"type,attr"`
}

func (a *Aggregator) exportGraphML(path string) error {
	doc := graphML{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Graph: graphMLGraph{ID: "G", EdgeDefault: "directed"},
	}
	for _, e := range a.graph.Entities {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphMLNode{ID: e.Name, Type: e.Type})
	}
	for _, r := range a.graph.Relationships {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{Source: r.From, Target: r.To, Type: r.Type})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graphml: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write graphml: %w", err)
	}
	return nil
}
