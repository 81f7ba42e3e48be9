package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"rag-chatbot-be/internal/apperr"
)

// ElasticIndex stores vectors in one Elasticsearch index per collection,
// using a dense_vector field with cosine similarity and kNN search.
type ElasticIndex struct {
	client *elasticsearch.Client
}

func NewElasticIndex(client *elasticsearch.Client) *ElasticIndex {
	return &ElasticIndex{client: client}
}

// NewElasticClient builds the shared ES client from a single node URL.
func NewElasticClient(url string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
}

func (e *ElasticIndex) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := e.client.Indices.Exists(
		[]string{name},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to check collection existence", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return e.verifyDimension(ctx, name, dimension)
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dimension,
					"index":      true,
					"similarity": "cosine",
				},
				"chunk_index": map[string]interface{}{"type": "long"},
				"file_path":   map[string]interface{}{"type": "keyword"},
				"chunk_count": map[string]interface{}{"type": "long"},
				"created_at":  map[string]interface{}{"type": "date"},
			},
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to encode collection mapping", err)
	}

	created, err := e.client.Indices.Create(
		name,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to create collection", err)
	}
	defer created.Body.Close()

	if created.IsError() {
		detail, _ := io.ReadAll(created.Body)
		// A concurrent first ingest may have won the create race.
		if strings.Contains(string(detail), "resource_already_exists_exception") {
			return e.verifyDimension(ctx, name, dimension)
		}
		return apperr.Newf(apperr.KindIndex,
			"failed to create collection %s: %s", name, string(detail))
	}

	return nil
}

// verifyDimension compares the stored dense_vector dims against the
// requested dimension. A mismatch is a configuration error, not something to
// ignore.
func (e *ElasticIndex) verifyDimension(ctx context.Context, name string, dimension int) error {
	res, err := e.client.Indices.GetMapping(
		e.client.Indices.GetMapping.WithContext(ctx),
		e.client.Indices.GetMapping.WithIndex(name),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "failed to read collection mapping", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return apperr.Newf(apperr.KindIndex, "failed to read mapping for %s: %s", name, string(detail))
	}

	var parsed map[string]struct {
		Mappings struct {
			Properties struct {
				Embedding struct {
					Dims int `json:"dims"`
				} `json:"embedding"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return apperr.Wrap(apperr.KindIndex, "malformed mapping response", err)
	}

	existing, ok := parsed[name]
	if !ok {
		return nil
	}
	if dims := existing.Mappings.Properties.Embedding.Dims; dims != 0 && dims != dimension {
		return apperr.Newf(apperr.KindIndex,
			"collection %s has dimension %d, want %d", name, dims, dimension)
	}
	return nil
}

func (e *ElasticIndex) Upsert(ctx context.Context, collection string, items []Item) (UpsertReport, error) {
	report := UpsertReport{}

	for _, item := range items {
		doc := map[string]interface{}{
			"text":        item.Payload.Text,
			"embedding":   item.Vector,
			"chunk_index": item.Payload.ChunkIndex,
			"file_path":   item.Payload.FilePath,
			"chunk_count": item.Payload.ChunkCount,
			"created_at":  time.Now().UTC().Format(time.RFC3339),
		}

		body, err := json.Marshal(doc)
		if err != nil {
			report.FailedIDs = append(report.FailedIDs, item.ID)
			continue
		}

		res, err := e.client.Index(
			collection,
			bytes.NewReader(body),
			e.client.Index.WithContext(ctx),
			e.client.Index.WithDocumentID(item.ID),
		)
		if err != nil {
			return report, apperr.Wrap(apperr.KindIndex, "vector index unreachable", err)
		}

		if res.IsError() {
			report.FailedIDs = append(report.FailedIDs, item.ID)
		} else {
			report.Inserted++
		}
		res.Body.Close()
	}

	return report, nil
}

func (e *ElasticIndex) Search(ctx context.Context, collection string, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, apperr.Invalid("search k must be positive")
	}

	query := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": k * 2,
		},
		"_source": []string{"text", "chunk_index", "file_path", "chunk_count"},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIndex, "failed to encode search query", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(collection),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIndex, "vector search failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return nil, apperr.Newf(apperr.KindIndex, "vector search failed: %s", string(detail))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source Payload `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindIndex, "malformed search response", err)
	}

	results := make([]Result, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, Result{
			Score:   hit.Score,
			Payload: hit.Source,
		})
	}

	return results, nil
}

// Ping verifies the cluster is reachable; the server refuses to start
// without it.
func (e *ElasticIndex) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return apperr.Wrap(apperr.KindIndex, "elasticsearch unreachable", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperr.Newf(apperr.KindIndex, "elasticsearch ping returned %s", res.Status())
	}
	return nil
}

var _ Index = (*ElasticIndex)(nil)
