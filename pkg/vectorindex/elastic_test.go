package vectorindex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/apperr"
)

// fakeElastic answers the exists/create/mapping calls EnsureCollection makes,
// simulating a node where another ingest already created the index.
func fakeElastic(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead:
			// The exists check ran before the concurrent create landed.
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception","reason":"index already exists"}}`))
		case strings.HasSuffix(r.URL.Path, "/_mapping"):
			_, _ = w.Write([]byte(
				`{"chatbot_shared":{"mappings":{"properties":{"embedding":{"type":"dense_vector","dims":` +
					strconv.Itoa(dims) + `}}}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEnsureCollectionLosingCreateRaceSucceeds(t *testing.T) {
	srv := fakeElastic(t, 64)
	defer srv.Close()

	client, err := NewElasticClient(srv.URL)
	require.NoError(t, err)

	idx := NewElasticIndex(client)
	assert.NoError(t, idx.EnsureCollection(context.Background(), "chatbot_shared", 64))
}

func TestEnsureCollectionLosingCreateRaceDimensionConflict(t *testing.T) {
	srv := fakeElastic(t, 32)
	defer srv.Close()

	client, err := NewElasticClient(srv.URL)
	require.NoError(t, err)

	idx := NewElasticIndex(client)
	err = idx.EnsureCollection(context.Background(), "chatbot_shared", 64)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindIndex))
}
