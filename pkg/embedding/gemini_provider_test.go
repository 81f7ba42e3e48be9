package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiEmbedTaskTypes(t *testing.T) {
	var mu sync.Mutex
	var taskTypes []string

	vector := make([]float32, geminiEmbeddingDimension)
	vector[0] = 1

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		taskTypes = append(taskTypes, req.TaskType)
		mu.Unlock()

		var resp geminiEmbedResponse
		resp.Embedding.Values = vector
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewGeminiProvider("test-key")
	p.baseURL = srv.URL

	_, err := p.Embed(context.Background(), "when are offices closed?")
	require.NoError(t, err)

	_, err = p.EmbedBatch(context.Background(), []string{"chunk one", "chunk two"})
	require.NoError(t, err)

	// Query embeds are asymmetric from document embeds.
	assert.Equal(t, []string{
		TaskRetrievalQuery,
		TaskRetrievalDocument,
		TaskRetrievalDocument,
	}, taskTypes)
}
