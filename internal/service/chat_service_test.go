package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/vectorindex"
)

type chatFixture struct {
	factory          *memory.Factory
	chatbotService   IChatBotService
	knowledgeService IKnowledgeService
	chatService      IChatService
	generator        *scriptedGenerator
	chatbotId        uuid.UUID
	sessionId        uuid.UUID
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	ctx := context.Background()

	factory := memory.NewFactory()
	chatbotService := NewChatBotService(factory, nopLogger{})
	index := vectorindex.NewMemoryIndex()
	provider := embedding.NewDeterministicProvider(64)
	publisher := &fakePublisher{}
	generator := &scriptedGenerator{answer: "Offices close on public holidays."}

	knowledgeService := NewKnowledgeService(chatbotService, provider, index, publisher, StageTimeouts{}, nopLogger{})
	chatService := NewChatService(factory, chatbotService, provider, index, generator, StageTimeouts{}, nopLogger{})

	chatbotId := createChatBot(t, chatbotService, "support-bot")
	_, err := knowledgeService.Ingest(ctx, chatbotId, "handbook.txt", wordsDocument(650))
	require.NoError(t, err)

	session, err := chatService.CreateSession(ctx)
	require.NoError(t, err)

	return &chatFixture{
		factory:          factory,
		chatbotService:   chatbotService,
		knowledgeService: knowledgeService,
		chatService:      chatService,
		generator:        generator,
		chatbotId:        chatbotId,
		sessionId:        session.Id,
	}
}

func TestAnswerEndToEnd(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	res, err := f.chatService.Answer(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Offices close on public holidays.", res.Answer)
	assert.Equal(t, 1, res.SequenceNumber)
	require.Len(t, res.ContextUsed, 4)
	assert.Equal(t, "handbook.txt", res.ContextUsed[0].FilePath)

	// The prompt cites the ingested document and carries the question.
	assembled := f.generator.prompt()
	assert.Contains(t, assembled, "Document: handbook.txt")
	assert.Contains(t, assembled, "User Question: When are offices closed?")

	// The turn is persisted with the generated response attached.
	history, err := f.chatService.GetChatHistory(ctx, res.ChatId)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].BotResponse)
	assert.Equal(t, res.Answer, *history[0].BotResponse)
	assert.Equal(t, "When are offices closed?", history[0].UserQuery)
}

func TestAnswerSecondTurnCarriesHistory(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.chatService.Answer(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	})
	require.NoError(t, err)

	_, err = f.chatService.Answer(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatId:    &first.ChatId,
		ChatbotId: f.chatbotId,
		Query:     "And what about remote work?",
	})
	require.NoError(t, err)

	assembled := f.generator.prompt()
	assert.Contains(t, assembled, "Previous conversation:")
	assert.Contains(t, assembled, "User: When are offices closed?")
	assert.Contains(t, assembled, "Bot: Offices close on public holidays.")
}

func TestAnswerUnknownSession(t *testing.T) {
	f := newChatFixture(t)
	unknown := uuid.New()

	_, err := f.chatService.Answer(context.Background(), &dto.SendChatRequest{
		SessionId: &unknown,
		ChatbotId: f.chatbotId,
		Query:     "hello",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAnswerStartsSessionWhenNoneGiven(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	res, err := f.chatService.Answer(ctx, &dto.SendChatRequest{
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.SessionId)
	assert.NotEqual(t, f.sessionId, res.SessionId)

	chats, err := f.chatService.ListChats(ctx, res.SessionId)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, res.ChatId, chats[0].Id)
}

func TestAnswerStreamPersistsAfterFinalChunk(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	var chunks []llm.StreamChunk
	res, err := f.chatService.AnswerStream(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	}, func(chunk llm.StreamChunk) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	assert.True(t, chunks[len(chunks)-1].IsFinal)

	var rebuilt string
	for _, chunk := range chunks {
		rebuilt += chunk.Text
	}
	assert.Equal(t, res.Answer, rebuilt)

	history, err := f.chatService.GetChatHistory(ctx, res.ChatId)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].BotResponse)
	assert.Equal(t, res.Answer, *history[0].BotResponse)
}

// failingEmbedProvider fails every query embed.
type failingEmbedProvider struct {
	*embedding.DeterministicProvider
}

func (p *failingEmbedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, apperr.New(apperr.KindProvider, "embedding backend unreachable")
}

func TestAnswerEmbedFailureLeavesNoTurn(t *testing.T) {
	factory := memory.NewFactory()
	chatbotService := NewChatBotService(factory, nopLogger{})
	chatService := NewChatService(
		factory,
		chatbotService,
		&failingEmbedProvider{embedding.NewDeterministicProvider(64)},
		vectorindex.NewMemoryIndex(),
		&scriptedGenerator{answer: "never generated"},
		StageTimeouts{},
		nopLogger{},
	)

	ctx := context.Background()
	chatbotId := createChatBot(t, chatbotService, "flaky-bot")
	session, err := chatService.CreateSession(ctx)
	require.NoError(t, err)

	_, err = chatService.Answer(ctx, &dto.SendChatRequest{
		SessionId: &session.Id,
		ChatbotId: chatbotId,
		Query:     "first question",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProvider))

	// A failed retrieval must not burn a sequence number or leave a turn
	// behind for later history windows.
	uow := factory.NewUnitOfWork(ctx)
	turns, err := uow.ConversationRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAnswerStreamCancelledMidStream(t *testing.T) {
	f := newChatFixture(t)
	f.generator.answer = strings.Repeat("offices close on public holidays ", 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := 0
	_, err := f.chatService.AnswerStream(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	}, func(chunk llm.StreamChunk) error {
		delivered++
		if delivered == 1 {
			// Simulates the connection dropping mid-stream.
			cancel()
		}
		return nil
	})
	require.Error(t, err)

	// The turn stays active with a null response, an empty Bot slot in
	// later history.
	chats, err := f.chatService.ListChats(context.Background(), f.sessionId)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	history, err := f.chatService.GetChatHistory(context.Background(), chats[0].Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].BotResponse)
}

func TestConcurrentTurnsGetContiguousSequences(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	session := &entity.Session{}
	require.NoError(t, uow.SessionRepository().Create(ctx, session))
	chat := &entity.Chat{SessionId: session.Id}
	require.NoError(t, uow.ChatRepository().Create(ctx, chat))

	const turns = 20
	var wg sync.WaitGroup
	sequences := make([]int, turns)

	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			turnUow := factory.NewUnitOfWork(ctx)
			conversation := &entity.Conversation{
				SessionId: session.Id,
				ChatId:    chat.Id,
				UserQuery: "q",
			}
			require.NoError(t, turnUow.ConversationRepository().Create(ctx, conversation))
			sequences[i] = conversation.SequenceNumber
		}(i)
	}
	wg.Wait()

	sort.Ints(sequences)
	for i, seq := range sequences {
		assert.Equal(t, i+1, seq, "sequence numbers must be contiguous from 1")
	}
}

func TestAttachResponseRoundTrip(t *testing.T) {
	factory := memory.NewFactory()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	conversation := &entity.Conversation{
		SessionId: uuid.New(),
		ChatId:    uuid.New(),
		UserQuery: "ping",
	}
	require.NoError(t, uow.ConversationRepository().Create(ctx, conversation))
	require.Nil(t, conversation.BotResponse)

	updated, err := uow.ConversationRepository().AttachResponse(ctx, conversation.Id, "pong")
	require.NoError(t, err)
	require.NotNil(t, updated.BotResponse)
	assert.Equal(t, "pong", *updated.BotResponse)
	assert.Equal(t, conversation.SequenceNumber, updated.SequenceNumber)
}

func TestAttachResponseUnknownTurn(t *testing.T) {
	factory := memory.NewFactory()
	uow := factory.NewUnitOfWork(context.Background())

	_, err := uow.ConversationRepository().AttachResponse(context.Background(), uuid.New(), "pong")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteSessionCascadesAndIsIdempotent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	res, err := f.chatService.Answer(ctx, &dto.SendChatRequest{
		SessionId: &f.sessionId,
		ChatbotId: f.chatbotId,
		Query:     "When are offices closed?",
	})
	require.NoError(t, err)

	require.NoError(t, f.chatService.DeleteSession(ctx, f.sessionId))
	// Second delete is a no-op.
	require.NoError(t, f.chatService.DeleteSession(ctx, f.sessionId))

	_, err = f.chatService.ListChats(ctx, f.sessionId)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.chatService.GetChatHistory(ctx, res.ChatId)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	sessions, err := f.chatService.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteUnknownSession(t *testing.T) {
	f := newChatFixture(t)

	err := f.chatService.DeleteSession(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

var _ unitofwork.RepositoryFactory = (*memory.Factory)(nil)
