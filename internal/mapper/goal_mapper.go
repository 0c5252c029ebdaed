package mapper

import (
	"time"

	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/model"

	"gorm.io/datatypes"
)

type GoalMapper struct{}

func NewGoalMapper() *GoalMapper {
	return &GoalMapper{}
}

func (m *GoalMapper) ToEntity(g *model.LearningGoal) *entity.LearningGoal {
	if g == nil {
		return nil
	}

	var updatedAt *time.Time
	if !g.UpdatedAt.IsZero() {
		t := g.UpdatedAt
		updatedAt = &t
	}

	return &entity.LearningGoal{
		Id:         g.Id,
		UserId:     g.UserId,
		Topic:      g.Topic,
		GoalText:   g.GoalText,
		TotalSteps: g.TotalSteps,
		Progress:   g.Progress,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *GoalMapper) ToModel(g *entity.LearningGoal) *model.LearningGoal {
	if g == nil {
		return nil
	}

	var updatedAt time.Time
	if g.UpdatedAt != nil {
		updatedAt = *g.UpdatedAt
	}

	return &model.LearningGoal{
		Id:         g.Id,
		UserId:     g.UserId,
		Topic:      g.Topic,
		GoalText:   g.GoalText,
		TotalSteps: g.TotalSteps,
		Progress:   g.Progress,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *GoalMapper) QuizAttemptToEntity(q *model.QuizAttempt) *entity.QuizAttempt {
	if q == nil {
		return nil
	}

	return &entity.QuizAttempt{
		Id:        q.Id,
		UserId:    q.UserId,
		GoalId:    q.GoalId,
		Kind:      q.Kind,
		Questions: []byte(q.Questions),
		Score:     q.Score,
		Total:     q.Total,
		CreatedAt: q.CreatedAt,
	}
}

func (m *GoalMapper) QuizAttemptToModel(q *entity.QuizAttempt) *model.QuizAttempt {
	if q == nil {
		return nil
	}

	return &model.QuizAttempt{
		Id:        q.Id,
		UserId:    q.UserId,
		GoalId:    q.GoalId,
		Kind:      q.Kind,
		Questions: datatypes.JSON(q.Questions),
		Score:     q.Score,
		Total:     q.Total,
		CreatedAt: q.CreatedAt,
	}
}
