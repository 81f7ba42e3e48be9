package extractor

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"

	"rag-chatbot-be/internal/apperr"
)

var pdfMagic = []byte("%PDF-")

// Extract pulls plain text out of an uploaded document. PDFs go through the
// pdf reader; anything else must already be valid UTF-8 text. An empty
// document is valid and extracts to an empty string.
func Extract(fileName string, data []byte) (string, error) {
	if isPDF(fileName, data) {
		return extractPDF(data)
	}

	if !utf8.Valid(data) {
		return "", apperr.Invalid("document is neither a pdf nor valid utf-8 text")
	}
	return string(data), nil
}

func isPDF(fileName string, data []byte) bool {
	if bytes.HasPrefix(data, pdfMagic) {
		return true
	}
	return strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "unreadable pdf document", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "failed to extract pdf text", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "failed to read pdf text", err)
	}

	return sb.String(), nil
}
