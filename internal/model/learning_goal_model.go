package model

import (
	"time"

	"github.com/google/uuid"
)

type LearningGoal struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Topic      string    `gorm:"type:varchar(512);not null"`
	GoalText   string    `gorm:"type:text;not null"`
	TotalSteps int       `gorm:"not null"`
	Progress   int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (LearningGoal) TableName() string {
	return "learning_goals"
}
