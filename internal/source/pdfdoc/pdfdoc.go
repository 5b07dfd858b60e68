// Package pdfdoc extracts per-page plain text from PDF documents.
package pdfdoc

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mshibata/chienowa/internal/chunker"
)

var logger = log.New(log.Writer(), "[PDF] ", log.LstdFlags)

// ExtractPages reads raw PDF data and returns the plain text of each
// non-empty page, page numbers starting at 1. Pages that cannot be
// decoded are skipped with a log line rather than failing the document.
func ExtractPages(data []byte) ([]chunker.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	totalPages := reader.NumPage()
	pages := make([]chunker.Page, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			logger.Printf("page %d is null, skipping", pageNum)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Printf("failed to extract page %d: %v", pageNum, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, chunker.Page{PageNum: pageNum, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text content extracted from pdf (%d pages)", totalPages)
	}
	return pages, nil
}
