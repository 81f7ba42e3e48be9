package vectorindex

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexEnsureCollectionConcurrent(t *testing.T) {
	idx := NewMemoryIndex()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = idx.EnsureCollection(context.Background(), "chatbot_shared", 4)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err, "concurrent first ingests must all succeed")
	}
}

func TestMemoryIndexEnsureCollection(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 4))
	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 4), "ensure must be idempotent")

	err := idx.EnsureCollection(ctx, "chatbot_a", 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestMemoryIndexUpsertReport(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 3))

	report, err := idx.Upsert(ctx, "chatbot_a", []Item{
		{ID: "ok-1", Vector: []float32{1, 0, 0}},
		{ID: "bad-dim", Vector: []float32{1, 0}},
		{ID: "ok-2", Vector: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, []string{"bad-dim"}, report.FailedIDs)
}

func TestMemoryIndexUpsertUnknownCollection(t *testing.T) {
	idx := NewMemoryIndex()

	_, err := idx.Upsert(context.Background(), "missing", []Item{{ID: "x", Vector: []float32{1}}})
	require.Error(t, err)
}

func TestMemoryIndexSearchOrdering(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 2))

	_, err := idx.Upsert(ctx, "chatbot_a", []Item{
		{ID: "east", Vector: []float32{1, 0}, Payload: Payload{Text: "east"}},
		{ID: "north", Vector: []float32{0, 1}, Payload: Payload{Text: "north"}},
		{ID: "northeast", Vector: []float32{1, 1}, Payload: Payload{Text: "northeast"}},
	})
	require.NoError(t, err)

	results, err := idx.Search(ctx, "chatbot_a", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "east", results[0].Payload.Text)
	assert.Equal(t, "northeast", results[1].Payload.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryIndexSearchDeterministic(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 2))

	items := make([]Item, 0, 6)
	for i := 0; i < 6; i++ {
		items = append(items, Item{
			ID:      fmt.Sprintf("dup-%d", i),
			Vector:  []float32{1, 0},
			Payload: Payload{Text: fmt.Sprintf("dup-%d", i)},
		})
	}
	_, err := idx.Upsert(ctx, "chatbot_a", items)
	require.NoError(t, err)

	first, err := idx.Search(ctx, "chatbot_a", []float32{1, 0}, 4)
	require.NoError(t, err)
	second, err := idx.Search(ctx, "chatbot_a", []float32{1, 0}, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestMemoryIndexSearchBounds(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, "chatbot_a", 2))

	_, err := idx.Search(ctx, "chatbot_a", []float32{1, 0}, 0)
	require.Error(t, err)

	results, err := idx.Search(ctx, "chatbot_a", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results, "empty collection returns no hits")
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "chatbot_42", CollectionName("42"))
}
