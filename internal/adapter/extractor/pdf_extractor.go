package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"quizcraft/internal/domain"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor implements domain.TextExtractor over uploaded PDF bytes.
type PDFExtractor struct{}

// NewPDFExtractor creates a new instance of PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText returns the concatenated text of all pages, truncated to
// maxChars. An image-only or malformed document yields an extraction error.
func (e *PDFExtractor) ExtractText(data []byte, maxChars int) (string, error) {
	return extract(data, 0, maxChars)
}

// ExtractFirstPage returns the text of the first page only, truncated to
// maxChars.
func (e *PDFExtractor) ExtractFirstPage(data []byte, maxChars int) (string, error) {
	return extract(data, 1, maxChars)
}

func extract(data []byte, pageLimit, maxChars int) (text string, err error) {
	// The pdf package panics on some malformed inputs; treat those the same
	// as a parse error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.NewExtractionError("malformed PDF document", fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewExtractionError("failed to read PDF document", err)
	}

	numPages := reader.NumPage()
	if pageLimit > 0 && numPages > pageLimit {
		numPages = pageLimit
	}

	var builder strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		builder.WriteString(pageText)
		if builder.Len() >= maxChars {
			break
		}
	}

	text = sanitize(builder.String(), maxChars)
	if strings.TrimSpace(text) == "" {
		return "", domain.NewExtractionError("no text extracted from PDF", nil)
	}
	return text, nil
}

// sanitize drops invalid UTF-8 sequences and truncates to maxChars without
// splitting a rune.
func sanitize(s string, maxChars int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var _ domain.TextExtractor = (*PDFExtractor)(nil)
