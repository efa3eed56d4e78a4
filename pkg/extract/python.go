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

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/ukg/pkg/kg"
)

// Entity and relationship types shared by the code extractors.
const (
	EntityFunction = "function"
	EntityClass    = "class"
	EntityModule   = "module"

	RelCalls     = "calls"
	RelImports   = "imports"
	RelHasMethod = "has_method"
)

// PythonExtractor extracts functions, classes, methods, imports and call
// relationships from Python source using Tree-sitter.
type PythonExtractor struct {
	parser *sitter.Parser
	logger *slog.Logger
}

// NewPythonExtractor creates a Python extractor.
func NewPythonExtractor(logger *slog.Logger) *PythonExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: parser, logger: logger}
}

func (e *PythonExtractor) Name() string { return "python" }

func (e *PythonExtractor) SupportedExtensions() []string {
	return []string{".py"}
}

func (e *PythonExtractor) CanProcess(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".py")
}

func (e *PythonExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}
	result, err := e.extractSource(content, path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}
	return result, nil
}

// extractSource runs the Tree-sitter parse on already-loaded content. The
// notebook extractor reuses it for converted cells.
func (e *PythonExtractor) extractSource(content []byte, sourceFile string) (*kg.ExtractionResult, error) {
	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Tree-sitter is error-tolerant; extract what parsed.
		e.logger.Warn("extract.python.syntax_errors", "path", sourceFile)
	}

	w := &pyWalk{
		content: content,
		source:  sourceFile,
		result: &kg.ExtractionResult{
			SourceFile: sourceFile,
			FileType:   "python",
			Metadata:   map[string]any{"language": "python"},
		},
		seen: make(map[string]bool),
	}
	w.walk(root, "")

	w.result.Metadata["line_count"] = int(root.EndPoint().Row) + 1
	return w.result, nil
}

// pyWalk carries state during the AST walk. seen suppresses duplicate
// entities within a single extraction, which would be a defect per the
// aggregator contract.
type pyWalk struct {
	content []byte
	source  string
	result  *kg.ExtractionResult
	seen    map[string]bool
}

func (w *pyWalk) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *pyWalk) addEntity(entityType, name string, attrs map[string]any) {
	key := entityType + "\x00" + name
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.result.Entities = append(w.result.Entities, kg.Entity{
		Type:       entityType,
		Name:       name,
		SourceFile: w.source,
		Attributes: attrs,
	})
}

func (w *pyWalk) addRel(relType, from, to string) {
	w.result.Relationships = append(w.result.Relationships, kg.Relationship{
		Type:       relType,
		From:       from,
		To:         to,
		SourceFile: w.source,
	})
}

// walk visits the AST. enclosing is the name of the nearest enclosing
// function or class, used to scope methods and call edges.
func (w *pyWalk) walk(node *sitter.Node, enclosing string) {
	if node == nil {
		return
	}

	next := enclosing

	switch node.Type() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		name := w.text(nameNode)
		fullName := name
		if enclosing != "" {
			fullName = enclosing + "." + name
		}

		attrs := map[string]any{"line": int(node.StartPoint().Row) + 1}
		if params := node.ChildByFieldName("parameters"); params != nil {
			attrs["signature"] = "def " + name + w.text(params)
		}
		w.addEntity(EntityFunction, fullName, attrs)

		// Methods hang off their class.
		if enclosing != "" {
			w.addRel(RelHasMethod, enclosing, fullName)
		}
		next = fullName

	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		name := w.text(nameNode)
		w.addEntity(EntityClass, name, map[string]any{
			"line": int(node.StartPoint().Row) + 1,
		})
		next = name

	case "import_statement", "import_from_statement":
		for _, mod := range pyImportedModules(node, w.content) {
			w.addEntity(EntityModule, mod, nil)
			w.addRel(RelImports, filepath.Base(w.source), mod)
		}

	case "call":
		fnNode := node.ChildByFieldName("function")
		if fnNode != nil && enclosing != "" {
			callee := w.text(fnNode)
			// Attribute calls keep only the final segment; the
			// aggregator tolerates unresolved names.
			if idx := strings.LastIndex(callee, "."); idx >= 0 {
				callee = callee[idx+1:]
			}
			if callee != "" {
				w.addRel(RelCalls, enclosing, callee)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), next)
	}
}

// pyImportedModules extracts module names from an import statement node.
func pyImportedModules(node *sitter.Node, content []byte) []string {
	var mods []string

	if node.Type() == "import_from_statement" {
		if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
			mods = append(mods, string(content[moduleNode.StartByte():moduleNode.EndByte()]))
		}
		return mods
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			mods = append(mods, string(content[child.StartByte():child.EndByte()]))
		case "aliased_import":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				mods = append(mods, string(content[nameNode.StartByte():nameNode.EndByte()]))
			}
		}
	}
	return mods
}
