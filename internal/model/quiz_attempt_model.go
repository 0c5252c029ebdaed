package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizAttempt is a completed quiz snapshot. Questions holds the full generated
// question set as JSON so past quizzes can be reviewed verbatim.
type QuizAttempt struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	GoalId    *uuid.UUID     `gorm:"type:uuid;index"`
	Kind      string         `gorm:"type:varchar(50);not null"` // "mini" | "final"
	Questions datatypes.JSON `gorm:"type:jsonb"`
	Score     int            `gorm:"not null;default:0"`
	Total     int            `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
