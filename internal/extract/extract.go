// Package extract converts uploaded binary documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Status tells callers whether there is text, nothing to extract, or a parse
// failure. "Unsupported" and "failed" are distinct on purpose: the first
// means the tool did not try, the second means it tried and the payload was
// malformed.
type Status string

const (
	// StatusOK means text was extracted (possibly empty for a blank document).
	StatusOK Status = "ok"
	// StatusUnsupported means the declared type has no extraction path.
	StatusUnsupported Status = "unsupported"
	// StatusFailed means the parser errored on the payload.
	StatusFailed Status = "failed"
)

// Result carries the extraction outcome. Text is empty unless Status is StatusOK.
type Result struct {
	Status Status
	Text   string
}

// Extractor turns a binary payload into plain text. Implementations never
// panic outward; every failure mode is a Result.
type Extractor interface {
	Extract(payload []byte, declaredType string) Result
}

// PDFExtractor extracts text from PDF payloads page by page.
// Any other declared type is reported as unsupported.
type PDFExtractor struct {
	logger *zap.Logger
}

var _ Extractor = (*PDFExtractor)(nil)

// New creates a PDFExtractor.
func New(logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger}
}

// Extract parses a PDF payload and concatenates page text with newline
// separators, preserving page order. Parse errors yield StatusFailed with
// empty text; non-PDF declared types yield StatusUnsupported.
func (e *PDFExtractor) Extract(payload []byte, declaredType string) Result {
	if !isPDF(declaredType) {
		return Result{Status: StatusUnsupported}
	}

	text, err := e.extractPDF(payload)
	if err != nil {
		e.logger.Warn("pdf extraction failed", zap.Error(err))
		return Result{Status: StatusFailed}
	}
	return Result{Status: StatusOK, Text: text}
}

// extractPDF does the actual parse. The pdf library panics on some malformed
// inputs, so the recover converts those into errors as well.
func (e *PDFExtractor) extractPDF(payload []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n"), nil
}

// isPDF accepts the declared type as an extension (".pdf", "pdf") or MIME type.
func isPDF(declaredType string) bool {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	switch t {
	case "pdf", ".pdf", "application/pdf":
		return true
	}
	return false
}
