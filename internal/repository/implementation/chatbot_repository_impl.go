package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/mapper"
	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/specification"
)

type ChatBotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatBotMapper
}

func NewChatBotRepository(db *gorm.DB) contract.ChatBotRepository {
	return &ChatBotRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatBotMapper(),
	}
}

func (r *ChatBotRepositoryImpl) Create(ctx context.Context, chatbot *entity.ChatBot) error {
	m := r.mapper.ToModel(chatbot)
	if m.Status == "" {
		m.Status = constant.StatusActive
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to create chatbot", err)
	}
	*chatbot = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatBotRepositoryImpl) IncrementIngestionStats(ctx context.Context, id uuid.UUID, ingestedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.ChatBot{}).
		Where("id = ? AND status = ?", id, constant.StatusActive).
		Updates(map[string]interface{}{
			"document_count":   gorm.Expr("document_count + 1"),
			"last_ingested_at": ingestedAt,
		})
	if result.Error != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to update ingestion stats", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("chatbot not found")
	}
	return nil
}

func (r *ChatBotRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.ChatBot{}).
		Where("id = ?", id).
		Update("status", constant.StatusDeleted)
	if result.Error != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to delete chatbot", result.Error)
	}
	return nil
}

func (r *ChatBotRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatBot, error) {
	var m model.ChatBot
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "failed to find chatbot", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatBotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatBot, error) {
	var models []*model.ChatBot
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list chatbots", err)
	}
	entities := make([]*entity.ChatBot, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
