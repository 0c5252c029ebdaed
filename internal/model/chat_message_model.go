package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the append-only conversation log. Rows are never updated or
// soft-deleted individually; clearing a transcript removes all rows for a user.
type ChatMessage struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Role         string    `gorm:"type:varchar(50);not null"`
	Content      string    `gorm:"type:text;not null"`
	DocumentName *string   `gorm:"type:varchar(512)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
