package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatBot struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string     `gorm:"type:text;not null"`
	Status         string     `gorm:"type:text;not null;default:'active';index"`
	DocumentCount  int        `gorm:"not null;default:0"`
	LastIngestedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (ChatBot) TableName() string {
	return "chat_bots"
}
