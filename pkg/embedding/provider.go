package embedding

import "context"

// Task types that distinguish document vectors from query vectors for
// providers that support asymmetric embedding (Gemini does).
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Provider maps text to fixed-length vectors. Implementations must be
// deterministic for identical input and must return unit-L2-normalized
// vectors, since every index engine downstream compares by cosine.
type Provider interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, order-preserving and
	// the same length as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is constant for the provider's lifetime.
	Dimension() int
}
