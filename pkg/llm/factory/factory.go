package factory

import (
	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/llm/gemini"
	"rag-chatbot-be/pkg/llm/ollama"
)

type Config struct {
	Provider       string
	Model          string
	GeminiAPIKey   string
	OllamaBaseURL  string
	StreamGroupLen int
}

func NewGenerator(cfg Config) (llm.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, apperr.New(apperr.KindProvider, "gemini requires an api key")
		}
		return gemini.NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model, cfg.StreamGroupLen), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model, cfg.StreamGroupLen), nil
	default:
		return nil, apperr.Newf(apperr.KindProvider, "unsupported llm provider: %s", cfg.Provider)
	}
}
