package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/vectorindex"
)

func newKnowledgeFixture(t *testing.T) (IKnowledgeService, IChatBotService, *vectorindex.MemoryIndex, *fakePublisher) {
	t.Helper()
	factory := memory.NewFactory()
	chatbotService := NewChatBotService(factory, nopLogger{})
	index := vectorindex.NewMemoryIndex()
	publisher := &fakePublisher{}

	knowledgeService := NewKnowledgeService(
		chatbotService,
		embedding.NewDeterministicProvider(64),
		index,
		publisher,
		StageTimeouts{},
		nopLogger{},
	)
	return knowledgeService, chatbotService, index, publisher
}

func createChatBot(t *testing.T, chatbotService IChatBotService, name string) uuid.UUID {
	t.Helper()
	created, err := chatbotService.Create(context.Background(), &dto.CreateChatBotRequest{Name: name})
	require.NoError(t, err)
	return created.Id
}

func TestIngestChunksAndIndexes(t *testing.T) {
	knowledgeService, chatbotService, index, publisher := newKnowledgeFixture(t)
	ctx := context.Background()
	chatbotId := createChatBot(t, chatbotService, "support-bot")

	// 650 words with window 200 and overlap 50 gives 4 chunks.
	res, err := knowledgeService.Ingest(ctx, chatbotId, "guide.txt", wordsDocument(650))
	require.NoError(t, err)

	assert.Equal(t, 4, res.ChunkCount)
	assert.Equal(t, "guide.txt", res.FilePath)
	assert.Equal(t, 1, publisher.published())

	// The chunks are searchable in the tenant collection.
	provider := embedding.NewDeterministicProvider(64)
	vector, err := provider.Embed(ctx, "word0 word1")
	require.NoError(t, err)

	hits, err := index.Search(ctx, vectorindex.CollectionName(chatbotId.String()), vector, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	assert.Equal(t, "guide.txt", hits[0].Payload.FilePath)
	assert.Equal(t, 4, hits[0].Payload.ChunkCount)
}

func TestIngestEmptyDocument(t *testing.T) {
	knowledgeService, chatbotService, _, publisher := newKnowledgeFixture(t)
	chatbotId := createChatBot(t, chatbotService, "empty-bot")

	res, err := knowledgeService.Ingest(context.Background(), chatbotId, "empty.txt", []byte(""))
	require.NoError(t, err)

	assert.Equal(t, 0, res.ChunkCount)
	assert.Equal(t, 1, publisher.published())
}

func TestIngestUnknownChatbot(t *testing.T) {
	knowledgeService, _, _, _ := newKnowledgeFixture(t)

	_, err := knowledgeService.Ingest(context.Background(), uuid.New(), "guide.txt", wordsDocument(10))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// stalledProvider never answers until its context gives up.
type stalledProvider struct {
	*embedding.DeterministicProvider
}

func (p *stalledProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestIngestEmbeddingTimeout(t *testing.T) {
	factory := memory.NewFactory()
	chatbotService := NewChatBotService(factory, nopLogger{})
	publisher := &fakePublisher{}

	knowledgeService := NewKnowledgeService(
		chatbotService,
		&stalledProvider{embedding.NewDeterministicProvider(64)},
		vectorindex.NewMemoryIndex(),
		publisher,
		StageTimeouts{Provider: 10 * time.Millisecond},
		nopLogger{},
	)
	chatbotId := createChatBot(t, chatbotService, "slow-bot")

	_, err := knowledgeService.Ingest(context.Background(), chatbotId, "guide.txt", wordsDocument(650))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTimeout))
	assert.Zero(t, publisher.published())
}

// mismatchProvider returns fewer vectors than requested texts.
type mismatchProvider struct {
	*embedding.DeterministicProvider
}

func (p *mismatchProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.DeterministicProvider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return vectors[:len(vectors)-1], nil
}

func TestIngestEmbeddingCountMismatch(t *testing.T) {
	factory := memory.NewFactory()
	chatbotService := NewChatBotService(factory, nopLogger{})
	publisher := &fakePublisher{}

	knowledgeService := NewKnowledgeService(
		chatbotService,
		&mismatchProvider{embedding.NewDeterministicProvider(64)},
		vectorindex.NewMemoryIndex(),
		publisher,
		StageTimeouts{},
		nopLogger{},
	)

	chatbotId := createChatBot(t, chatbotService, "broken-bot")

	_, err := knowledgeService.Ingest(context.Background(), chatbotId, "guide.txt", wordsDocument(650))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProvider))
	assert.Zero(t, publisher.published())
}
