package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rag-chatbot-be/internal/apperr"
)

const geminiEmbeddingDimension = 768 // text-embedding-004

const geminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiEmbedRequestPart struct {
	Text string `json:"text"`
}

type geminiEmbedRequestContent struct {
	Parts []geminiEmbedRequestPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string                    `json:"model"`
	Content  geminiEmbedRequestContent `json:"content"`
	TaskType string                    `json:"task_type,omitempty"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GeminiProvider generates embeddings via the Gemini embedContent endpoint.
// Single embeds are tagged as retrieval queries, batch embeds as retrieval
// documents, matching how the pipeline uses them.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   "text-embedding-004",
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GeminiProvider) Dimension() int {
	return geminiEmbeddingDimension
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.embed(ctx, text, TaskRetrievalQuery)
}

func (p *GeminiProvider) embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	geminiReq := geminiEmbedRequest{
		Model: p.model,
		Content: geminiEmbedRequestContent{
			Parts: []geminiEmbedRequestPart{{Text: text}},
		},
		TaskType: taskType,
	}
	body, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, "failed to encode embedding request", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:embedContent", p.baseURL, p.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, "failed to build embedding request", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, "embedding backend unreachable", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, "failed to read embedding response", err)
	}

	if res.StatusCode == http.StatusBadRequest {
		return nil, apperr.Newf(apperr.KindInvalidInput,
			"embedding backend rejected input: %s", string(resBytes))
	}
	if res.StatusCode != http.StatusOK {
		return nil, apperr.Newf(apperr.KindProvider,
			"error from gemini embedding, code %d, body %s", res.StatusCode, string(resBytes))
	}

	var parsed geminiEmbedResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, apperr.Wrap(apperr.KindProvider, "malformed embedding response", err)
	}
	if len(parsed.Embedding.Values) != p.Dimension() {
		return nil, apperr.Newf(apperr.KindProvider,
			"embedding dimension mismatch: got %d, want %d", len(parsed.Embedding.Values), p.Dimension())
	}

	return Normalize(parsed.Embedding.Values), nil
}

func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.embed(ctx, text, TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
