package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/repository/specification"
)

type ChatBotRepository interface {
	Create(ctx context.Context, chatbot *entity.ChatBot) error
	// IncrementIngestionStats bumps document_count and stamps the ingestion
	// time after a document lands in the vector index.
	IncrementIngestionStats(ctx context.Context, id uuid.UUID, ingestedAt time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatBot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatBot, error)
}
