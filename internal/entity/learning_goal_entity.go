package entity

import (
	"time"

	"github.com/google/uuid"
)

type LearningGoal struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Topic      string
	GoalText   string
	TotalSteps int
	Progress   int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type QuizAttempt struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	GoalId    *uuid.UUID
	Kind      string // "mini" | "final"
	Questions []byte // JSON snapshot of the generated question set
	Score     int
	Total     int
	CreatedAt time.Time
}

const (
	QuizKindMini  = "mini"
	QuizKindFinal = "final"
)
