package implementation

import (
	"context"
	"errors"

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

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	m := r.mapper.ChatToModel(chat)
	if m.Status == "" {
		m.Status = constant.StatusActive
	}
	if m.Title == "" {
		m.Title = constant.DefaultChatTitle
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to create chat", err)
	}
	*chat = *r.mapper.ChatToEntity(m)
	return nil
}

func (r *ChatRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", id).
		Update("status", constant.StatusDeleted).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to delete chat", err)
	}
	return nil
}

func (r *ChatRepositoryImpl) SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("session_id = ?", sessionId).
		Update("status", constant.StatusDeleted).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to delete session chats", err)
	}
	return nil
}

func (r *ChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	var m model.Chat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "failed to find chat", err)
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	var models []*model.Chat
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list chats", err)
	}
	entities := make([]*entity.Chat, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatToEntity(m)
	}
	return entities, nil
}
