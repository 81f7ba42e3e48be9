package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is one turn of a chat. BotResponse stays nil between turn
// creation and answer attachment.
type Conversation struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	ChatId         uuid.UUID
	SequenceNumber int
	UserQuery      string
	BotResponse    *string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
