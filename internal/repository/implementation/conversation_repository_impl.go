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

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

// Create assigns the next sequence number under a per-chat advisory lock.
// The lock serializes concurrent turn creation on one chat; the unique index
// on (chat_id, sequence_number) backstops it. Callers must run this inside a
// transaction, the lock releases on commit.
func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	db := r.db.WithContext(ctx)

	err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?::text))", conversation.ChatId).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to lock chat sequence", err)
	}

	var next int
	err = db.Raw(
		"SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM conversations WHERE chat_id = ?",
		conversation.ChatId,
	).Scan(&next).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to compute sequence number", err)
	}

	conversation.SequenceNumber = next
	m := r.mapper.ConversationToModel(conversation)
	if m.Status == "" {
		m.Status = constant.StatusActive
	}
	if err := db.Create(m).Error; err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to create conversation", err)
	}

	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) AttachResponse(ctx context.Context, id uuid.UUID, response string) (*entity.Conversation, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND status = ?", id, constant.StatusActive).
		Update("bot_response", response)
	if result.Error != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to attach response", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("conversation not found")
	}

	var m model.Conversation
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to reload conversation", err)
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("session_id = ?", sessionId).
		Update("status", constant.StatusDeleted).Error
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "failed to delete session conversations", err)
	}
	return nil
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "failed to find conversation", err)
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to list conversations", err)
	}
	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationToEntity(m)
	}
	return entities, nil
}
