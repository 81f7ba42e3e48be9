package contract

import (
	"context"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// SoftDelete flips the session status to deleted. Deleting an already
	// deleted session is a no-op.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
}
