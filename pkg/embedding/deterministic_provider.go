package embedding

import "context"

// DeterministicProvider derives vectors from a content hash instead of a
// model. It keeps the full Provider contract (fixed dimension, repeatable
// output, unit norm) without any backing resource, which makes it the
// default for tests and offline development.
type DeterministicProvider struct {
	dimension int
}

func NewDeterministicProvider(dimension int) *DeterministicProvider {
	if dimension <= 0 {
		dimension = 384
	}
	return &DeterministicProvider{dimension: dimension}
}

func (p *DeterministicProvider) Dimension() int {
	return p.dimension
}

func (p *DeterministicProvider) Embed(_ context.Context, text string) ([]float32, error) {
	var hash uint64
	for _, b := range []byte(text) {
		hash = hash*31 + uint64(b)
	}

	embedding := make([]float32, p.dimension)
	for i := range embedding {
		seed := hash + uint64(i)
		embedding[i] = float32(seed%1000)/1000.0 - 0.5
	}

	return Normalize(embedding), nil
}

func (p *DeterministicProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
