package llm

import (
	"context"
	"strings"
)

// RegroupWords turns a complete answer into a chunk stream of groupSize-word
// pieces. It backs providers whose APIs only return full responses; the
// contract stays the same as native streaming: ordered chunks, exactly one
// final chunk, channel closed afterwards.
func RegroupWords(ctx context.Context, answer string, groupSize int) <-chan StreamChunk {
	if groupSize <= 0 {
		groupSize = 3
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)

		words := strings.Fields(answer)
		if len(words) == 0 {
			select {
			case out <- StreamChunk{Text: answer, IsFinal: true}:
			case <-ctx.Done():
			}
			return
		}

		for start := 0; start < len(words); start += groupSize {
			end := start + groupSize
			if end > len(words) {
				end = len(words)
			}

			text := strings.Join(words[start:end], " ")
			if end < len(words) {
				text += " "
			}

			select {
			case out <- StreamChunk{Text: text, IsFinal: end == len(words)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
