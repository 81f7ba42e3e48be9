package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatBot is one tenant. Its id derives the vector collection that isolates
// the tenant's documents.
type ChatBot struct {
	Id             uuid.UUID
	Name           string
	Status         string
	DocumentCount  int
	LastIngestedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
