package mapper

import (
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Session{
		Id:        s.Id,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Session{
		Id:        s.Id,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chat{
		Id:        c.Id,
		SessionId: c.SessionId,
		Title:     c.Title,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chat{
		Id:        c.Id,
		SessionId: c.SessionId,
		Title:     c.Title,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:             c.Id,
		SessionId:      c.SessionId,
		ChatId:         c.ChatId,
		SequenceNumber: c.SequenceNumber,
		UserQuery:      c.UserQuery,
		BotResponse:    c.BotResponse,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:             c.Id,
		SessionId:      c.SessionId,
		ChatId:         c.ChatId,
		SequenceNumber: c.SequenceNumber,
		UserQuery:      c.UserQuery,
		BotResponse:    c.BotResponse,
		Status:         c.Status,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}
