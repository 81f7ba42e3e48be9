package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/apperr"
)

func TestDeleteChatbotBlocksIngestion(t *testing.T) {
	knowledgeService, chatbotService, _, _ := newKnowledgeFixture(t)
	ctx := context.Background()
	chatbotId := createChatBot(t, chatbotService, "retired-bot")

	// A successful ingest primes the active-lookup cache.
	_, err := knowledgeService.Ingest(ctx, chatbotId, "guide.txt", wordsDocument(10))
	require.NoError(t, err)

	require.NoError(t, chatbotService.Delete(ctx, chatbotId))
	// Second delete is a no-op.
	require.NoError(t, chatbotService.Delete(ctx, chatbotId))

	// The delete must also evict the cached lookup.
	_, err = knowledgeService.Ingest(ctx, chatbotId, "guide.txt", wordsDocument(10))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	chatbots, err := chatbotService.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, chatbots)
}

func TestDeleteUnknownChatbot(t *testing.T) {
	_, chatbotService, _, _ := newKnowledgeFixture(t)

	err := chatbotService.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
