package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan StreamChunk) []StreamChunk {
	t.Helper()
	var chunks []StreamChunk
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestRegroupWordsReassembles(t *testing.T) {
	answer := "the quick brown fox jumps over the lazy dog"

	chunks := collect(t, RegroupWords(context.Background(), answer, 3))
	require.Len(t, chunks, 3)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Text)
	}
	assert.Equal(t, answer, rebuilt.String())
}

func TestRegroupWordsFinalFlag(t *testing.T) {
	chunks := collect(t, RegroupWords(context.Background(), "one two three four five", 2))
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks[:len(chunks)-1] {
		assert.False(t, chunk.IsFinal, "chunk %d must not be final", i)
	}
	assert.True(t, chunks[len(chunks)-1].IsFinal)
}

func TestRegroupWordsEmptyAnswer(t *testing.T) {
	chunks := collect(t, RegroupWords(context.Background(), "", 3))

	require.Len(t, chunks, 1)
	assert.True(t, chunks[0].IsFinal)
	assert.Empty(t, chunks[0].Text)
}

func TestRegroupWordsShortAnswer(t *testing.T) {
	chunks := collect(t, RegroupWords(context.Background(), "hello", 5))

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0].Text)
	assert.True(t, chunks[0].IsFinal)
}

func TestRegroupWordsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ch := RegroupWords(ctx, "a b c d e f g h i j", 1)
	first, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, "a ", first.Text)

	cancel()

	// The producer stops on cancel; draining must terminate.
	for range ch {
	}
}
