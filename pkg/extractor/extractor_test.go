package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/apperr"
)

func TestExtractPlainText(t *testing.T) {
	text, err := Extract("notes.txt", []byte("hello from a text file"))
	require.NoError(t, err)
	assert.Equal(t, "hello from a text file", text)
}

func TestExtractEmptyDocument(t *testing.T) {
	text, err := Extract("empty.txt", []byte{})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := Extract("binary.bin", []byte{0xff, 0xfe, 0x00, 0x01})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestExtractCorruptPDF(t *testing.T) {
	// The magic bytes route it to the pdf reader, which must reject the body.
	_, err := Extract("broken.pdf", []byte("%PDF-1.7 this is not a real pdf"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestExtractPDFExtensionWithoutMagic(t *testing.T) {
	_, err := Extract("report.PDF", []byte("plain text wearing a pdf extension"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}
