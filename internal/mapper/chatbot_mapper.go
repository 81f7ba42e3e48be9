package mapper

import (
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/model"
)

type ChatBotMapper struct{}

func NewChatBotMapper() *ChatBotMapper {
	return &ChatBotMapper{}
}

func (m *ChatBotMapper) ToEntity(b *model.ChatBot) *entity.ChatBot {
	if b == nil {
		return nil
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatBot{
		Id:             b.Id,
		Name:           b.Name,
		Status:         b.Status,
		DocumentCount:  b.DocumentCount,
		LastIngestedAt: b.LastIngestedAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ChatBotMapper) ToModel(b *entity.ChatBot) *model.ChatBot {
	if b == nil {
		return nil
	}

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.ChatBot{
		Id:             b.Id,
		Name:           b.Name,
		Status:         b.Status,
		DocumentCount:  b.DocumentCount,
		LastIngestedAt: b.LastIngestedAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
