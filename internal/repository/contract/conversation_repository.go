package contract

import (
	"context"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type ConversationRepository interface {
	// Create persists the turn and assigns its sequence number atomically.
	// Concurrent creates on the same chat never produce duplicates or gaps.
	Create(ctx context.Context, conversation *entity.Conversation) error

	// AttachResponse fills bot_response on an active turn and returns the
	// updated row. A missing or deleted turn is a not-found error.
	AttachResponse(ctx context.Context, id uuid.UUID, response string) (*entity.Conversation, error)

	SoftDeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
}
