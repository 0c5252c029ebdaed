package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Role         string
	Content      string
	DocumentName *string
	CreatedAt    time.Time
}
