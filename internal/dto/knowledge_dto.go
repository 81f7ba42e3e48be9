package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadKnowledgeResponse struct {
	ChatbotId  uuid.UUID `json:"chatbot_id"`
	FilePath   string    `json:"file_path"`
	ChunkCount int       `json:"chunk_count"`
}

// KnowledgeIngestedEvent is published after a document lands in the vector
// index; the consumer updates the owning chatbot's ingestion stats.
type KnowledgeIngestedEvent struct {
	ChatbotId  uuid.UUID `json:"chatbot_id"`
	FilePath   string    `json:"file_path"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}
