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
	"archive/zip"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/ukg/pkg/kg"
)

// Office entity and relationship types.
const (
	EntityDocument = "document"
	EntityHeading  = "heading"
	EntitySlide    = "slide"
	EntitySheet    = "sheet"
	EntityDataset  = "dataset"
	EntityColumn   = "column"

	RelContains  = "contains"
	RelHasColumn = "has_column"
)

// OfficeExtractor extracts structure from office documents. OOXML formats
// (.docx, .pptx, .xlsx) are ZIP containers holding XML parts, read with
// archive/zip and encoding/xml. Legacy .xls is opaque binary and yields a
// document entity with file metadata only. .csv headers become a dataset
// with columns.
type OfficeExtractor struct {
	logger *slog.Logger
}

// NewOfficeExtractor creates an office document extractor.
func NewOfficeExtractor(logger *slog.Logger) *OfficeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OfficeExtractor{logger: logger}
}

func (e *OfficeExtractor) Name() string { return "office" }

func (e *OfficeExtractor) SupportedExtensions() []string {
	return []string{".docx", ".pptx", ".xlsx", ".xls", ".csv"}
}

func (e *OfficeExtractor) CanProcess(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx", ".pptx", ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

func (e *OfficeExtractor) Extract(path string) (*kg.ExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var result *kg.ExtractionResult
	var err error
	switch ext {
	case ".docx":
		result, err = e.extractDocx(path)
	case ".pptx":
		result, err = e.extractPptx(path)
	case ".xlsx":
		result, err = e.extractXlsx(path)
	case ".xls":
		result, err = e.extractLegacy(path)
	case ".csv":
		result, err = e.extractCSV(path)
	default:
		err = fmt.Errorf("unhandled extension %s", ext)
	}
	if err != nil {
		return nil, NewExtractionError(path, err)
	}
	return result, nil
}

// newOfficeResult builds the base result with a document entity named
// after the file.
func newOfficeResult(path, fileType string) *kg.ExtractionResult {
	result := &kg.ExtractionResult{
		SourceFile: path,
		FileType:   fileType,
		Metadata:   map[string]any{},
	}
	result.Entities = append(result.Entities, kg.Entity{
		Type:       EntityDocument,
		Name:       filepath.Base(path),
		SourceFile: path,
	})
	return result
}

// extractDocx reads word/document.xml and emits heading entities.
func (e *OfficeExtractor) extractDocx(path string) (*kg.ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}
	defer zr.Close()

	result := newOfficeResult(path, "office_docx")
	docName := filepath.Base(path)

	rc, err := openZipPart(&zr.Reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	headings, paragraphs, err := parseDocxBody(rc)
	if err != nil {
		return nil, fmt.Errorf("parse document body: %w", err)
	}

	for _, h := range headings {
		result.Entities = append(result.Entities, kg.Entity{
			Type:       EntityHeading,
			Name:       h.text,
			SourceFile: path,
			Attributes: map[string]any{"style": h.style},
		})
		result.Relationships = append(result.Relationships, kg.Relationship{
			Type:       RelContains,
			From:       docName,
			To:         h.text,
			SourceFile: path,
		})
	}

	result.Metadata["paragraphs"] = paragraphs
	result.Metadata["headings"] = len(headings)
	return result, nil
}

type docxHeading struct {
	text  string
	style string
}

// parseDocxBody streams WordprocessingML, collecting text of paragraphs
// styled Heading* and the total paragraph count.
func parseDocxBody(r io.Reader) ([]docxHeading, int, error) {
	dec := xml.NewDecoder(r)

	var headings []docxHeading
	paragraphs := 0
	inParagraph := false
	style := ""
	var text strings.Builder

	flush := func() {
		if inParagraph && strings.HasPrefix(style, "Heading") && text.Len() > 0 {
			headings = append(headings, docxHeading{text: text.String(), style: style})
		}
		inParagraph = false
		style = ""
		text.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				flush()
				inParagraph = true
				paragraphs++
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err == nil && inParagraph {
					text.WriteString(s)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				flush()
			}
		}
	}
	flush()

	return headings, paragraphs, nil
}

// extractPptx emits one slide entity per ppt/slides/slideN.xml, titled by
// the slide's first text run.
func (e *OfficeExtractor) extractPptx(path string) (*kg.ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx container: %w", err)
	}
	defer zr.Close()

	result := newOfficeResult(path, "office_pptx")
	docName := filepath.Base(path)

	var slideParts []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideParts = append(slideParts, f.Name)
		}
	}
	sort.Strings(slideParts)

	for i, part := range slideParts {
		rc, err := openZipPart(&zr.Reader, part)
		if err != nil {
			return nil, err
		}
		title := firstTextRun(rc)
		rc.Close()

		name := fmt.Sprintf("slide_%d", i+1)
		attrs := map[string]any{"index": i + 1}
		if title != "" {
			attrs["title"] = title
		}
		result.Entities = append(result.Entities, kg.Entity{
			Type:       EntitySlide,
			Name:       name,
			SourceFile: path,
			Attributes: attrs,
		})
		result.Relationships = append(result.Relationships, kg.Relationship{
			Type:       RelContains,
			From:       docName,
			To:         name,
			SourceFile: path,
		})
	}

	result.Metadata["slides"] = len(slideParts)
	return result, nil
}

// firstTextRun returns the first a:t text content of a slide part.
func firstTextRun(r io.Reader) string {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == "t" {
			var s string
			if err := dec.DecodeElement(&s, &t); err == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
}

// extractXlsx emits one sheet entity per workbook sheet.
func (e *OfficeExtractor) extractXlsx(path string) (*kg.ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx container: %w", err)
	}
	defer zr.Close()

	result := newOfficeResult(path, "office_xlsx")
	docName := filepath.Base(path)

	rc, err := openZipPart(&zr.Reader, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var workbook struct {
		Sheets struct {
			Sheet []struct {
				Name string `xml:"name,attr"`
			} `xml:"sheet"`
		} `xml:"sheets"`
	}
	if err := xml.NewDecoder(rc).Decode(&workbook); err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}

	for _, sheet := range workbook.Sheets.Sheet {
		result.Entities = append(result.Entities, kg.Entity{
			Type:       EntitySheet,
			Name:       sheet.Name,
			SourceFile: path,
		})
		result.Relationships = append(result.Relationships, kg.Relationship{
			Type:       RelContains,
			From:       docName,
			To:         sheet.Name,
			SourceFile: path,
		})
	}

	result.Metadata["sheets"] = len(workbook.Sheets.Sheet)
	return result, nil
}

// extractLegacy handles binary .xls, which we do not parse. The file is
// still represented in the graph with its size recorded.
func (e *OfficeExtractor) extractLegacy(path string) (*kg.ExtractionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	result := newOfficeResult(path, "office_xls")
	result.Metadata["size_bytes"] = info.Size()
	result.Metadata["parsed"] = false
	return result, nil
}

// extractCSV reads the header row and emits a dataset with its columns.
func (e *OfficeExtractor) extractCSV(path string) (*kg.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		result := newOfficeResult(path, "csv")
		result.Entities[0].Type = EntityDataset
		result.Metadata["columns"] = 0
		result.Metadata["rows"] = 0
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rows := 0
	for {
		if _, err := reader.Read(); err != nil {
			break
		}
		rows++
	}

	datasetName := filepath.Base(path)
	result := &kg.ExtractionResult{
		SourceFile: path,
		FileType:   "csv",
		Metadata:   map[string]any{"columns": len(header), "rows": rows},
	}
	result.Entities = append(result.Entities, kg.Entity{
		Type:       EntityDataset,
		Name:       datasetName,
		SourceFile: path,
	})

	seen := make(map[string]bool)
	for _, col := range header {
		col = strings.TrimSpace(col)
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		result.Entities = append(result.Entities, kg.Entity{
			Type:       EntityColumn,
			Name:       col,
			SourceFile: path,
		})
		result.Relationships = append(result.Relationships, kg.Relationship{
			Type:       RelHasColumn,
			From:       datasetName,
			To:         col,
			SourceFile: path,
		})
	}

	return result, nil
}

// openZipPart opens a named part from an OOXML container.
func openZipPart(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("missing container part: %s", name)
}
