package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/specification"
	"rag-chatbot-be/internal/repository/unitofwork"
)

type IChatBotService interface {
	Create(ctx context.Context, req *dto.CreateChatBotRequest) (*dto.ChatBotResponse, error)
	List(ctx context.Context) ([]*dto.ChatBotResponse, error)
	// VerifyActive resolves the chatbot and fails with not-found when it is
	// missing or soft-deleted. Lookups are cached briefly; ingestion and
	// query both hit this on every request.
	VerifyActive(ctx context.Context, id uuid.UUID) (*entity.ChatBot, error)
	// Delete soft-deletes the chatbot. Its vectors stay in the index;
	// requests against a deleted chatbot fail at VerifyActive.
	Delete(ctx context.Context, id uuid.UUID) error
}

type chatBotService struct {
	uowFactory  unitofwork.RepositoryFactory
	logger      logger.ILogger
	activeCache *cache.Cache
}

func NewChatBotService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IChatBotService {
	return &chatBotService{
		uowFactory:  uowFactory,
		logger:      log,
		activeCache: cache.New(30*time.Second, 5*time.Minute),
	}
}

func (s *chatBotService) Create(ctx context.Context, req *dto.CreateChatBotRequest) (*dto.ChatBotResponse, error) {
	chatbot := &entity.ChatBot{
		Id:     uuid.New(),
		Name:   req.Name,
		Status: constant.StatusActive,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatBotRepository().Create(ctx, chatbot); err != nil {
		return nil, err
	}

	s.logger.Info("chatbot", "chatbot created", map[string]interface{}{
		"chatbot_id": chatbot.Id.String(),
		"name":       chatbot.Name,
	})

	return toChatBotResponse(chatbot), nil
}

func (s *chatBotService) List(ctx context.Context) ([]*dto.ChatBotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chatbots, err := uow.ChatBotRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ChatBotResponse, len(chatbots))
	for i, chatbot := range chatbots {
		responses[i] = toChatBotResponse(chatbot)
	}
	return responses, nil
}

func (s *chatBotService) VerifyActive(ctx context.Context, id uuid.UUID) (*entity.ChatBot, error) {
	if cached, found := s.activeCache.Get(id.String()); found {
		return cached.(*entity.ChatBot), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chatbot, err := uow.ChatBotRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if chatbot == nil {
		return nil, apperr.NotFound("chatbot not found")
	}

	s.activeCache.Set(id.String(), chatbot, cache.DefaultExpiration)
	return chatbot, nil
}

func (s *chatBotService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatbot, err := uow.ChatBotRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if chatbot == nil {
		return apperr.NotFound("chatbot not found")
	}
	if chatbot.Status == constant.StatusDeleted {
		return nil
	}

	if err := uow.ChatBotRepository().SoftDelete(ctx, id); err != nil {
		return err
	}
	s.activeCache.Delete(id.String())

	s.logger.Info("chatbot", "chatbot deleted", map[string]interface{}{
		"chatbot_id": id.String(),
	})
	return nil
}

func toChatBotResponse(chatbot *entity.ChatBot) *dto.ChatBotResponse {
	return &dto.ChatBotResponse{
		Id:             chatbot.Id,
		Name:           chatbot.Name,
		Status:         chatbot.Status,
		DocumentCount:  chatbot.DocumentCount,
		LastIngestedAt: chatbot.LastIngestedAt,
		CreatedAt:      chatbot.CreatedAt,
	}
}
