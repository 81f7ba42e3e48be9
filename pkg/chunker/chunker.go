package chunker

import (
	"strings"

	"rag-chatbot-be/internal/apperr"
)

// Chunk splits text into overlapping windows of whole words. A window of
// windowSize words is emitted, then the start advances to end-overlap, so
// consecutive chunks share their boundary words. Chunk boundaries never fall
// inside a word and an empty input yields no chunks.
func Chunk(text string, windowSize int, overlap int) ([]string, error) {
	if windowSize <= 0 {
		return nil, apperr.Invalid("chunk window size must be positive")
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, apperr.Newf(apperr.KindInvalidInput,
			"chunk overlap %d must be in [0, %d)", overlap, windowSize)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + windowSize
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.Join(words[start:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(words) {
			break
		}
		start = end - overlap
	}

	return chunks, nil
}
