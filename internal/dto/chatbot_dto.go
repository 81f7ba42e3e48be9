package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatBotRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type ChatBotResponse struct {
	Id             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	DocumentCount  int        `json:"document_count"`
	LastIngestedAt *time.Time `json:"last_ingested_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
