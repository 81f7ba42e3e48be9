package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/pkg/llm"
)

type OllamaProvider struct {
	BaseURL        string
	ModelName      string
	Client         *http.Client
	streamGroupLen int
}

var _ llm.Generator = (*OllamaProvider)(nil)

func NewOllamaProvider(baseURL, modelName string, streamGroupLen int) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if streamGroupLen <= 0 {
		streamGroupLen = 3
	}
	return &OllamaProvider{
		BaseURL:        baseURL,
		ModelName:      modelName,
		streamGroupLen: streamGroupLen,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to encode generation request", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to build generation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "ollama request failed", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "failed to read ollama response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Newf(apperr.KindProvider,
			"ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", apperr.Wrap(apperr.KindProvider, "malformed ollama response", err)
	}

	return ollamaResp.Message.Content, nil
}

func (o *OllamaProvider) GenerateStream(ctx context.Context, prompt string, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	answer, err := o.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return llm.RegroupWords(ctx, answer, o.streamGroupLen), nil
}
