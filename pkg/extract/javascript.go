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
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/ukg/pkg/kg"
)

// JavaScriptExtractor handles the JavaScript/TypeScript family (.js, .jsx,
// .ts, .tsx) with one Tree-sitter parser per grammar.
type JavaScriptExtractor struct {
	jsParser  *sitter.Parser
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser
	logger    *slog.Logger
}

// NewJavaScriptExtractor creates a JS/TS extractor.
func NewJavaScriptExtractor(logger *slog.Logger) *JavaScriptExtractor {
	if logger == nil {
		logger = slog.Default()
	}

	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())
	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())

	return &JavaScriptExtractor{
		jsParser:  jsParser,
		tsParser:  tsParser,
		tsxParser: tsxParser,
		logger:    logger,
	}
}

func (e *JavaScriptExtractor) Name() string { return "javascript" }

func (e *JavaScriptExtractor) SupportedExtensions() []string {
	return []string{".js", ".jsx", ".ts", ".tsx"}
}

func (e *JavaScriptExtractor) CanProcess(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".ts", ".tsx":
		return true
	}
	return false
}

func (e *JavaScriptExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewExtractionError(path, err)
	}

	var parser *sitter.Parser
	var fileType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts":
		parser, fileType = e.tsParser, "typescript"
	case ".tsx":
		parser, fileType = e.tsxParser, "typescript"
	default:
		parser, fileType = e.jsParser, "javascript"
	}

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, NewExtractionError(path, fmt.Errorf("tree-sitter parse: %w", err))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		e.logger.Warn("extract.javascript.syntax_errors", "path", path)
	}

	w := &jsWalk{
		content: content,
		source:  path,
		result: &kg.ExtractionResult{
			SourceFile: path,
			FileType:   fileType,
			Metadata:   map[string]any{"language": fileType},
		},
		seen: make(map[string]bool),
	}
	w.walk(root, "")

	w.result.Metadata["line_count"] = int(root.EndPoint().Row) + 1
	return w.result, nil
}

type jsWalk struct {
	content []byte
	source  string
	result  *kg.ExtractionResult
	seen    map[string]bool
}

func (w *jsWalk) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *jsWalk) addEntity(entityType, name string, attrs map[string]any) {
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

func (w *jsWalk) addRel(relType, from, to string) {
	w.result.Relationships = append(w.result.Relationships, kg.Relationship{
		Type:       relType,
		From:       from,
		To:         to,
		SourceFile: w.source,
	})
}

func (w *jsWalk) walk(node *sitter.Node, enclosing string) {
	if node == nil {
		return
	}

	next := enclosing

	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := w.text(nameNode)
			w.addEntity(EntityFunction, name, map[string]any{
				"line": int(node.StartPoint().Row) + 1,
			})
			next = name
		}

	case "class_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := w.text(nameNode)
			w.addEntity(EntityClass, name, map[string]any{
				"line": int(node.StartPoint().Row) + 1,
			})
			next = name
		}

	case "method_definition":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := w.text(nameNode)
			fullName := name
			if enclosing != "" {
				fullName = enclosing + "." + name
				w.addRel(RelHasMethod, enclosing, fullName)
			}
			w.addEntity(EntityFunction, fullName, map[string]any{
				"line": int(node.StartPoint().Row) + 1,
			})
			next = fullName
		}

	case "variable_declarator":
		// const foo = () => {} and const foo = function() {}
		nameNode := node.ChildByFieldName("name")
		valueNode := node.ChildByFieldName("value")
		if nameNode != nil && valueNode != nil &&
			(valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression" || valueNode.Type() == "function") {
			name := w.text(nameNode)
			w.addEntity(EntityFunction, name, map[string]any{
				"line": int(node.StartPoint().Row) + 1,
				"kind": "arrow",
			})
			next = name
		}

	case "import_statement":
		if srcNode := node.ChildByFieldName("source"); srcNode != nil {
			mod := strings.Trim(w.text(srcNode), `'"`)
			if mod != "" {
				w.addEntity(EntityModule, mod, nil)
				w.addRel(RelImports, filepath.Base(w.source), mod)
			}
		}

	case "call_expression":
		if fnNode := node.ChildByFieldName("function"); fnNode != nil && enclosing != "" {
			callee := w.text(fnNode)
			if idx := strings.LastIndex(callee, "."); idx >= 0 {
				callee = callee[idx+1:]
			}
			if callee != "" && !strings.ContainsAny(callee, "({[") {
				w.addRel(RelCalls, enclosing, callee)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), next)
	}
}
