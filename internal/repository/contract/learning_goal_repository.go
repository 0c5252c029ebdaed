package contract

import (
	"context"

	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LearningGoalRepository interface {
	Create(ctx context.Context, goal *entity.LearningGoal) error
	Update(ctx context.Context, goal *entity.LearningGoal) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LearningGoal, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LearningGoal, error)
	// UpdateProgress raises the progress counter. Progress is monotone: the
	// write is skipped when stepCount is not an increase, and it is capped at
	// the goal's total step count.
	UpdateProgress(ctx context.Context, goalId uuid.UUID, stepCount int) error
}

type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.QuizAttempt) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error)
}
