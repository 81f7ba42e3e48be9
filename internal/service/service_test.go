package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rag-chatbot-be/pkg/llm"
)

// nopLogger keeps test output clean.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakePublisher records everything published.
type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// scriptedGenerator returns a fixed answer and remembers the last prompt.
type scriptedGenerator struct {
	mu         sync.Mutex
	answer     string
	lastPrompt string
	err        error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	g.mu.Lock()
	g.lastPrompt = prompt
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *scriptedGenerator) GenerateStream(ctx context.Context, prompt string, options ...llm.Option) (<-chan llm.StreamChunk, error) {
	answer, err := g.Generate(ctx, prompt, options...)
	if err != nil {
		return nil, err
	}
	return llm.RegroupWords(ctx, answer, 2), nil
}

func (g *scriptedGenerator) prompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}

// wordsDocument builds a document of n distinct words.
func wordsDocument(n int) []byte {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "word%d", i)
	}
	return []byte(sb.String())
}
