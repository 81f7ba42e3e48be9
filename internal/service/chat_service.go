package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/prompt"
	"rag-chatbot-be/pkg/vectorindex"
)

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	ListSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	ListChats(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatResponse, error)
	GetChatHistory(ctx context.Context, chatId uuid.UUID) ([]*dto.ConversationResponse, error)
	// DeleteSession soft-deletes the session with its chats and
	// conversations. Deleting an already deleted session is a no-op.
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error

	// Answer runs the full pipeline: retrieve, assemble, generate, persist.
	Answer(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)

	// AnswerStream delivers the answer through send chunk by chunk and
	// persists the response only after the final chunk went out.
	AnswerStream(ctx context.Context, req *dto.SendChatRequest, send func(llm.StreamChunk) error) (*dto.SendChatResponse, error)
}

// StageTimeouts bounds the external calls of one answer turn.
type StageTimeouts struct {
	Store    time.Duration
	Index    time.Duration
	Provider time.Duration
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	chatbotService    IChatBotService
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	generator         llm.Generator
	timeouts          StageTimeouts
	logger            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	chatbotService IChatBotService,
	embeddingProvider embedding.Provider,
	index vectorindex.Index,
	generator llm.Generator,
	timeouts StageTimeouts,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		chatbotService:    chatbotService,
		embeddingProvider: embeddingProvider,
		index:             index,
		generator:         generator,
		timeouts:          timeouts,
		logger:            log,
	}
}

func (s *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := &entity.Session{
		Id:     uuid.New(),
		Status: constant.StatusActive,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{
		Id:        session.Id,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *chatService) ListSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = &dto.SessionResponse{
			Id:        session.Id,
			Status:    session.Status,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *chatService) ListChats(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.requireActiveSession(ctx, uow, sessionId); err != nil {
		return nil, err
	}

	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ChatResponse, len(chats))
	for i, chat := range chats {
		responses[i] = &dto.ChatResponse{
			Id:        chat.Id,
			SessionId: chat.SessionId,
			Title:     chat.Title,
			CreatedAt: chat.CreatedAt,
			UpdatedAt: chat.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, chatId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound("chat not found")
	}

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "sequence_number", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ConversationResponse, len(conversations))
	for i, conversation := range conversations {
		responses[i] = toConversationResponse(conversation)
	}
	return responses, nil
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return apperr.NotFound("session not found")
	}
	if session.Status == constant.StatusDeleted {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().SoftDeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatRepository().SoftDeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.SessionRepository().SoftDelete(ctx, sessionId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to commit transaction", err)
	}

	s.logger.Info("chat", "session deleted", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

func (s *chatService) Answer(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	turn, assembled, contextUsed, err := s.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	providerCtx, cancel := stageContext(ctx, s.timeouts.Provider)
	defer cancel()

	answer, err := s.generator.Generate(providerCtx, assembled)
	if err != nil {
		if errors.Is(providerCtx.Err(), context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.KindProvider, "generation timed out", context.DeadlineExceeded)
		}
		return nil, err
	}

	return s.persistAnswer(ctx, turn, answer, contextUsed)
}

func (s *chatService) AnswerStream(ctx context.Context, req *dto.SendChatRequest, send func(llm.StreamChunk) error) (*dto.SendChatResponse, error) {
	turn, assembled, contextUsed, err := s.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	providerCtx, cancel := stageContext(ctx, s.timeouts.Provider)
	defer cancel()

	chunks, err := s.generator.GenerateStream(providerCtx, assembled)
	if err != nil {
		return nil, err
	}

	var answer strings.Builder
	delivered := false
	for chunk := range chunks {
		answer.WriteString(chunk.Text)
		if err := send(chunk); err != nil {
			// Client went away mid-stream; the turn keeps its null response.
			return nil, apperr.Wrap(apperr.KindUnknown, "stream delivery failed", err)
		}
		if chunk.IsFinal {
			delivered = true
		}
	}
	if !delivered {
		return nil, apperr.New(apperr.KindProvider, "stream ended without a final chunk")
	}

	return s.persistAnswer(ctx, turn, answer.String(), contextUsed)
}

// prepareTurn runs everything before generation: validation, turn
// persistence, retrieval and prompt assembly.
func (s *chatService) prepareTurn(ctx context.Context, req *dto.SendChatRequest) (*entity.Conversation, string, []dto.QueryResultItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.resolveSession(ctx, uow, req.SessionId)
	if err != nil {
		return nil, "", nil, err
	}
	if _, err := s.chatbotService.VerifyActive(ctx, req.ChatbotId); err != nil {
		return nil, "", nil, err
	}

	chat, err := s.resolveChat(ctx, uow, session.Id, req.ChatId)
	if err != nil {
		return nil, "", nil, err
	}

	history, err := s.loadHistory(ctx, uow, chat.Id)
	if err != nil {
		return nil, "", nil, err
	}

	providerCtx, cancelEmbed := stageContext(ctx, s.timeouts.Provider)
	vector, err := s.embeddingProvider.Embed(providerCtx, req.Query)
	cancelEmbed()
	if err != nil {
		return nil, "", nil, err
	}

	indexCtx, cancelSearch := stageContext(ctx, s.timeouts.Index)
	collection := vectorindex.CollectionName(req.ChatbotId.String())
	passages, err := s.index.Search(indexCtx, collection, vector, constant.SearchTopK)
	cancelSearch()
	if err != nil {
		return nil, "", nil, err
	}

	// The turn is persisted only once retrieval succeeded, so a failed embed
	// or search never burns a sequence number or leaves an orphaned turn in
	// the history window.
	turn := &entity.Conversation{
		Id:        uuid.New(),
		SessionId: session.Id,
		ChatId:    chat.Id,
		UserQuery: req.Query,
		Status:    constant.StatusActive,
	}
	storeCtx, cancelStore := stageContext(ctx, s.timeouts.Store)
	defer cancelStore()
	if err := uow.Begin(storeCtx); err != nil {
		return nil, "", nil, apperr.Wrap(apperr.KindStorage, "failed to begin transaction", err)
	}
	if err := uow.ConversationRepository().Create(storeCtx, turn); err != nil {
		uow.Rollback()
		return nil, "", nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, "", nil, apperr.Wrap(apperr.KindStorage, "failed to commit transaction", err)
	}

	contextUsed := make([]dto.QueryResultItem, len(passages))
	for i, passage := range passages {
		contextUsed[i] = dto.QueryResultItem{
			Text:       passage.Payload.Text,
			Score:      passage.Score,
			ChunkIndex: passage.Payload.ChunkIndex,
			FilePath:   passage.Payload.FilePath,
			ChunkCount: passage.Payload.ChunkCount,
		}
	}

	assembled := prompt.NewBuilder(req.Query, passages, history).Build()
	return turn, assembled, contextUsed, nil
}

func (s *chatService) persistAnswer(ctx context.Context, turn *entity.Conversation, answer string, contextUsed []dto.QueryResultItem) (*dto.SendChatResponse, error) {
	storeCtx, cancel := stageContext(ctx, s.timeouts.Store)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	updated, err := uow.ConversationRepository().AttachResponse(storeCtx, turn.Id, answer)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat", "turn answered", map[string]interface{}{
		"chat_id":         updated.ChatId.String(),
		"conversation_id": updated.Id.String(),
		"sequence_number": updated.SequenceNumber,
	})

	return &dto.SendChatResponse{
		SessionId:      updated.SessionId,
		ChatId:         updated.ChatId,
		ConversationId: updated.Id,
		SequenceNumber: updated.SequenceNumber,
		Answer:         answer,
		ContextUsed:    contextUsed,
		CreatedAt:      updated.CreatedAt,
	}, nil
}

func (s *chatService) requireActiveSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("session not found")
	}
	return session, nil
}

// resolveSession returns the named session or starts a new one when the
// request names none.
func (s *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionId *uuid.UUID) (*entity.Session, error) {
	if sessionId != nil {
		return s.requireActiveSession(ctx, uow, *sessionId)
	}

	session := &entity.Session{
		Id:     uuid.New(),
		Status: constant.StatusActive,
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// resolveChat returns the requested chat or starts a new one when the
// request names none.
func (s *chatService) resolveChat(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, chatId *uuid.UUID) (*entity.Chat, error) {
	if chatId != nil {
		chat, err := uow.ChatRepository().FindOne(ctx,
			specification.ByID{ID: *chatId},
			specification.BySessionID{SessionID: sessionId},
			specification.ActiveOnly{},
		)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			return nil, apperr.NotFound("chat not found")
		}
		return chat, nil
	}

	chat := &entity.Chat{
		Id:        uuid.New(),
		SessionId: sessionId,
		Title:     constant.DefaultChatTitle,
		Status:    constant.StatusActive,
	}
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// loadHistory returns the last turns of the chat oldest first, bounded by
// the history limit. The current query is not persisted yet, so it never
// shows up here.
func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, chatId uuid.UUID) ([]prompt.Turn, error) {
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "sequence_number", Desc: true},
		specification.Limit{N: constant.HistoryTurnLimit},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]prompt.Turn, len(conversations))
	for i, conversation := range conversations {
		// Reverse into oldest-first order.
		turns[len(conversations)-1-i] = prompt.Turn{
			Query:    conversation.UserQuery,
			Response: conversation.BotResponse,
		}
	}
	return turns, nil
}

// stageContext bounds one external call. A non-positive timeout means the
// caller's deadline is the only bound.
func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func toConversationResponse(conversation *entity.Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		Id:             conversation.Id,
		ChatId:         conversation.ChatId,
		SequenceNumber: conversation.SequenceNumber,
		UserQuery:      conversation.UserQuery,
		BotResponse:    conversation.BotResponse,
		CreatedAt:      conversation.CreatedAt,
	}
}
