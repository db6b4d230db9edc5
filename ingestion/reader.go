// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/sectionrank/core"
)

// Reader extracts the pages of one document.
type Reader interface {
	// Read returns the pages of the document at path, numbered from 1.
	// Pages without text may be omitted.
	Read(ctx context.Context, path string) ([]core.Page, error)
}

// PDFReader extracts the plain text of every PDF page.
type PDFReader struct{}

var _ Reader = PDFReader{}

// Read implements Reader.
func (PDFReader) Read(ctx context.Context, path string) ([]core.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing pdf: %w", err)
	}

	var pages []core.Page
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(content) != "" {
			pages = append(pages, core.Page{Number: i, Text: content})
		}
	}
	return pages, nil
}

// TextReader reads UTF-8 text files. A form feed starts a new page.
type TextReader struct{}

var _ Reader = TextReader{}

// Read implements Reader.
func (TextReader) Read(_ context.Context, path string) ([]core.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitPages(string(data)), nil
}

// SplitPages splits text into pages at form feeds, dropping blank pages but
// keeping the numbering of the rest.
func SplitPages(content string) []core.Page {
	var pages []core.Page
	for i, page := range strings.Split(content, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pages = append(pages, core.Page{Number: i + 1, Text: page})
	}
	return pages
}
