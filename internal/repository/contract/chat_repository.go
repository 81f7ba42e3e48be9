package contract

import (
	"context"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
}
