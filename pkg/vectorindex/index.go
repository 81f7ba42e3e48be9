package vectorindex

import (
	"context"
	"fmt"
)

// Payload is the document metadata stored next to each vector and returned
// by search.
type Payload struct {
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	FilePath   string `json:"file_path"`
	ChunkCount int    `json:"chunk_count"`
}

// Item is one vector to insert. Items are never updated in place; ingestion
// always generates fresh ids.
type Item struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Result is one search hit, scored by cosine similarity.
type Result struct {
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}

// UpsertReport describes a per-item insert outcome. Inserted can be lower
// than the input length; FailedIDs then names the rejected items.
type UpsertReport struct {
	Inserted  int
	FailedIDs []string
}

// Index is a per-tenant vector collection store. Collections isolate
// tenants from each other, so no query ever needs a tenant filter.
type Index interface {
	// EnsureCollection creates the named collection with the given vector
	// dimension and cosine metric if absent. Idempotent; an existing
	// collection with a different dimension is an error, never ignored.
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert inserts items independently and reports how many landed.
	Upsert(ctx context.Context, collection string, items []Item) (UpsertReport, error)

	// Search returns up to k results ordered by descending similarity.
	// Ordering is deterministic for identical index state.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]Result, error)
}

// CollectionName derives the tenant collection name from a chatbot id.
func CollectionName(chatbotID string) string {
	return fmt.Sprintf("chatbot_%s", chatbotID)
}
