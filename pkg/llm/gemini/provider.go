package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/pkg/llm"
)

const defaultModel = "gemini-1.5-flash"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiProvider calls the Google Generative Language REST API.
type GeminiProvider struct {
	apiKey         string
	modelName      string
	client         *http.Client
	streamGroupLen int
}

var _ llm.Generator = (*GeminiProvider)(nil)

func NewGeminiProvider(apiKey, modelName string, streamGroupLen int) *GeminiProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	if streamGroupLen <= 0 {
		streamGroupLen = 3
	}
	return &GeminiProvider{
		apiKey:         apiKey,
		modelName:      modelName,
		streamGroupLen: streamGroupLen,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	model := g.modelName
	if options.Model != "" {
		model = options.Model
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{{Text: prompt}},
				Role:  "user",
			},
		},
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to encode generation request", err)
	}

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:generateContent", model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to build generation request", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "gemini request failed", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to read gemini response", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", apperr.Newf(apperr.KindProvider,
			"gemini returned status %d: %s", res.StatusCode, string(resBody))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "malformed gemini response", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", apperr.New(apperr.KindProvider, "gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateStream regroups the full answer into word chunks; the v1 REST
// endpoint has no incremental response.
func (g *GeminiProvider) GenerateStream(ctx context.Context, prompt string, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	answer, err := g.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return llm.RegroupWords(ctx, answer, g.streamGroupLen), nil
}
