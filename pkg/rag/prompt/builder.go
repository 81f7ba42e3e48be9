package prompt

import (
	"fmt"
	"strings"

	"rag-chatbot-be/pkg/vectorindex"
)

const preamble = "You are a helpful AI assistant. Based on the following context, please answer the user's question. If the context doesn't contain enough information to answer the question, please say so."

// Turn is one past exchange fed into the prompt, oldest first. Response is
// nil while a turn is still awaiting its answer.
type Turn struct {
	Query    string
	Response *string
}

// Builder assembles the generation prompt from retrieved passages and
// bounded conversation history.
type Builder struct {
	query    string
	passages []vectorindex.Result
	history  []Turn
}

func NewBuilder(query string, passages []vectorindex.Result, history []Turn) *Builder {
	return &Builder{
		query:    query,
		passages: passages,
		history:  history,
	}
}

func (b *Builder) Build() string {
	context := b.buildContext()

	var prompt strings.Builder
	prompt.WriteString(preamble)
	prompt.WriteString("\n\nContext:\n")
	prompt.WriteString(context)
	prompt.WriteString("\n\nUser Question: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\nAnswer:")
	return prompt.String()
}

func (b *Builder) buildContext() string {
	documents := b.buildDocuments()

	history := b.buildHistory()
	if history == "" {
		return fmt.Sprintf("Relevant documents:\n%s", documents)
	}
	return fmt.Sprintf("Previous conversation:\n%s\n\nRelevant documents:\n%s", history, documents)
}

func (b *Builder) buildDocuments() string {
	sections := make([]string, 0, len(b.passages))
	for _, passage := range b.passages {
		sections = append(sections, fmt.Sprintf(
			"Document: %s\nContent: %s", passage.Payload.FilePath, passage.Payload.Text))
	}
	return strings.Join(sections, "\n\n")
}

func (b *Builder) buildHistory() string {
	if len(b.history) == 0 {
		return ""
	}

	lines := make([]string, 0, len(b.history))
	for _, turn := range b.history {
		response := ""
		if turn.Response != nil {
			response = *turn.Response
		}
		lines = append(lines, fmt.Sprintf("User: %s\nBot: %s", turn.Query, response))
	}
	return strings.Join(lines, "\n\n")
}
