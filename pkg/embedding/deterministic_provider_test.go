package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestDeterministicProviderRepeatable(t *testing.T) {
	p := NewDeterministicProvider(384)
	ctx := context.Background()

	first, err := p.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)
	second, err := p.Embed(ctx, "the quick brown fox")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 384)
}

func TestDeterministicProviderDistinctInputs(t *testing.T) {
	p := NewDeterministicProvider(64)
	ctx := context.Background()

	a, err := p.Embed(ctx, "alpha")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "beta")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeterministicProviderUnitNorm(t *testing.T) {
	p := NewDeterministicProvider(128)

	vec, err := p.Embed(context.Background(), "normalize me")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vectorNorm(vec), 1e-5)
}

func TestDeterministicProviderBatchOrder(t *testing.T) {
	p := NewDeterministicProvider(32)
	ctx := context.Background()
	texts := []string{"one", "two", "three"}

	batch, err := p.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		single, err := p.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}
