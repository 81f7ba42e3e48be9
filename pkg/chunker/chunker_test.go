package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		chunks, err := Chunk(text, 10, 2)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunkInvalidConfig(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		overlap    int
	}{
		{"zero window", 0, 0},
		{"negative window", -1, 0},
		{"negative overlap", 5, -1},
		{"overlap equals window", 5, 5},
		{"overlap above window", 5, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Chunk("some words here", tt.windowSize, tt.overlap)
			assert.Error(t, err)
		})
	}
}

func TestChunkOverlapInvariant(t *testing.T) {
	text := "one two three four five six seven eight nine ten eleven twelve"
	chunks, err := Chunk(text, 5, 2)
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)

	for i, chunk := range chunks {
		words := strings.Fields(chunk)
		if i < len(chunks)-1 {
			assert.Len(t, words, 5)
		} else {
			assert.LessOrEqual(t, len(words), 5)
		}

		if i > 0 {
			prev := strings.Fields(chunks[i-1])
			assert.Equal(t, prev[len(prev)-2:], words[:2],
				"chunk %d must start with the previous chunk's last 2 words", i)
		}
	}
}

func TestChunkWordAligned(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	chunks, err := Chunk(text, 3, 1)
	require.NoError(t, err)

	vocab := map[string]bool{}
	for _, w := range strings.Fields(text) {
		vocab[w] = true
	}
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk) {
			assert.True(t, vocab[w], "chunk word %q was split mid-word", w)
		}
	}
}

func TestChunkShortInput(t *testing.T) {
	chunks, err := Chunk("just three words", 200, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just three words", chunks[0])
}

func TestChunkStateless(t *testing.T) {
	text := "a b c d e f g h i j"
	first, err := Chunk(text, 4, 1)
	require.NoError(t, err)
	second, err := Chunk(text, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
