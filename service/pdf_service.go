package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deckwise/analyzer-be/types"
	"github.com/ledongthuc/pdf"
)

// PDFService turns a raw PDF byte stream into per-page plain text. It is a
// pure transformation: no temp files, no external tools.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// Extractor is the page-extraction port of the pipeline. PDFService is the
// production implementation; tests substitute their own.
type Extractor interface {
	ExtractPages(data []byte) ([]types.PageText, error)
}

// ExtractPages returns the ordered (page number, text) pairs of the document.
// It fails with ErrUnreadableDocument when the bytes are not a valid PDF or
// no page carries an extractable text layer.
func (s *PDFService) ExtractPages(data []byte) (pages []types.PageText, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = types.NewPipelineError(types.ErrUnreadableDocument, fmt.Errorf("pdf parse panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewPipelineError(types.ErrUnreadableDocument, err)
	}

	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages instead of failing the whole document.
			continue
		}
		text = cleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, types.PageText{Page: pageNum, Text: text})
	}

	if len(pages) == 0 {
		return nil, types.NewPipelineError(types.ErrUnreadableDocument,
			fmt.Errorf("no extractable text layer in %d pages", totalPages))
	}
	return pages, nil
}

// cleanText strips control characters and collapses whitespace artifacts that
// PDF text layers commonly carry.
func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // null character
		"\ufffd": "",   // unicode replacement character
		"\u001b": "",   // escape character
		"\r":     "",   // carriage return
		"\f":     "\n", // form feed to newline
		"  ":     " ",  // double space to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}
	return strings.TrimSpace(cleaned)
}
