package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
