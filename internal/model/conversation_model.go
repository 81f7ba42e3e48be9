package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ChatId         uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_conversations_chat_seq,priority:1"`
	SequenceNumber int       `gorm:"not null;uniqueIndex:idx_conversations_chat_seq,priority:2"`
	UserQuery      string    `gorm:"type:text;not null"`
	BotResponse    *string   `gorm:"type:text"`
	Status         string    `gorm:"type:text;not null;default:'active';index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
