package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/pkg/vectorindex"
)

func strPtr(s string) *string { return &s }

func passages() []vectorindex.Result {
	return []vectorindex.Result{
		{Payload: vectorindex.Payload{FilePath: "handbook.pdf", Text: "Offices close on public holidays."}},
		{Payload: vectorindex.Payload{FilePath: "faq.txt", Text: "Remote work requires manager approval."}},
	}
}

func TestBuildWithoutHistory(t *testing.T) {
	b := NewBuilder("When are offices closed?", passages(), nil)
	got := b.Build()

	assert.True(t, strings.HasPrefix(got, "You are a helpful AI assistant."))
	assert.Contains(t, got, "Context:\nRelevant documents:\n")
	assert.NotContains(t, got, "Previous conversation:")
	assert.Contains(t, got, "Document: handbook.pdf\nContent: Offices close on public holidays.")
	assert.Contains(t, got, "Document: faq.txt\nContent: Remote work requires manager approval.")
	assert.True(t, strings.HasSuffix(got, "User Question: When are offices closed?\n\nAnswer:"))
}

func TestBuildWithHistory(t *testing.T) {
	history := []Turn{
		{Query: "Hi", Response: strPtr("Hello! How can I help?")},
		{Query: "What about holidays?", Response: nil},
	}

	got := NewBuilder("And remote work?", passages(), history).Build()

	require.Contains(t, got, "Previous conversation:\n")
	assert.Contains(t, got, "User: Hi\nBot: Hello! How can I help?")
	assert.Contains(t, got, "User: What about holidays?\nBot: ")

	// Turns are separated by a blank line.
	assert.Contains(t, got, "Bot: Hello! How can I help?\n\nUser: What about holidays?")

	// History comes before retrieved documents.
	histPos := strings.Index(got, "Previous conversation:")
	docsPos := strings.Index(got, "Relevant documents:")
	assert.Less(t, histPos, docsPos)
}

func TestBuildPassageOrderPreserved(t *testing.T) {
	got := NewBuilder("q", passages(), nil).Build()

	first := strings.Index(got, "handbook.pdf")
	second := strings.Index(got, "faq.txt")
	assert.Less(t, first, second)
}

func TestBuildNoPassages(t *testing.T) {
	got := NewBuilder("anything?", nil, nil).Build()

	assert.Contains(t, got, "Relevant documents:\n")
	assert.Contains(t, got, "User Question: anything?")
}
