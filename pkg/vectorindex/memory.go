package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"rag-chatbot-be/internal/apperr"
)

type memoryCollection struct {
	dimension int
	items     []Item
}

// MemoryIndex is a brute-force cosine index. It backs tests and local
// development, and doubles as the reference behavior for the real engines.
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		collections: make(map[string]*memoryCollection),
	}
}

func (m *MemoryIndex) EnsureCollection(_ context.Context, name string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.collections[name]; ok {
		if existing.dimension != dimension {
			return apperr.Newf(apperr.KindIndex,
				"collection %s has dimension %d, want %d", name, existing.dimension, dimension)
		}
		return nil
	}

	m.collections[name] = &memoryCollection{dimension: dimension}
	return nil
}

func (m *MemoryIndex) Upsert(_ context.Context, collection string, items []Item) (UpsertReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return UpsertReport{}, apperr.Newf(apperr.KindIndex, "collection %s does not exist", collection)
	}

	report := UpsertReport{}
	for _, item := range items {
		if len(item.Vector) != col.dimension {
			report.FailedIDs = append(report.FailedIDs, item.ID)
			continue
		}
		col.items = append(col.items, item)
		report.Inserted++
	}

	return report, nil
}

func (m *MemoryIndex) Search(_ context.Context, collection string, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, apperr.Invalid("search k must be positive")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil, apperr.Newf(apperr.KindIndex, "collection %s does not exist", collection)
	}

	type scored struct {
		id     string
		result Result
	}
	hits := make([]scored, 0, len(col.items))
	for _, item := range col.items {
		hits = append(hits, scored{
			id: item.ID,
			result: Result{
				Score:   cosineSimilarity(vector, item.Vector),
				Payload: item.Payload,
			},
		})
	}

	// Ties break on id so repeated searches over the same state return the
	// same ordering.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].result.Score != hits[j].result.Score {
			return hits[i].result.Score > hits[j].result.Score
		}
		return hits[i].id < hits[j].id
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = hit.result
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Index = (*MemoryIndex)(nil)
