package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ChatResponse struct {
	Id        uuid.UUID  `json:"id"`
	SessionId uuid.UUID  `json:"session_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// SessionId and ChatId are both optional: a missing session starts a new
// one, a missing chat starts a new chat inside the session.
type SendChatRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	ChatId    *uuid.UUID `json:"chat_id"`
	ChatbotId uuid.UUID  `json:"chatbot_id" validate:"required"`
	Query     string     `json:"query" validate:"required"`
}

type SendChatResponse struct {
	SessionId      uuid.UUID         `json:"session_id"`
	ChatId         uuid.UUID         `json:"chat_id"`
	ConversationId uuid.UUID         `json:"conversation_id"`
	SequenceNumber int               `json:"sequence_number"`
	Answer         string            `json:"answer"`
	ContextUsed    []QueryResultItem `json:"context_used"`
	CreatedAt      time.Time         `json:"created_at"`
}

type ConversationResponse struct {
	Id             uuid.UUID `json:"id"`
	ChatId         uuid.UUID `json:"chat_id"`
	SequenceNumber int       `json:"sequence_number"`
	UserQuery      string    `json:"user_query"`
	BotResponse    *string   `json:"bot_response"`
	CreatedAt      time.Time `json:"created_at"`
}
