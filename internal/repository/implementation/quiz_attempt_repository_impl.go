package implementation

import (
	"context"

	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/mapper"
	"ai-learning-partner-be/internal/model"
	"ai-learning-partner-be/internal/repository/contract"
	"ai-learning-partner-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QuizAttemptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GoalMapper
}

func NewQuizAttemptRepository(db *gorm.DB) contract.QuizAttemptRepository {
	return &QuizAttemptRepositoryImpl{
		db:     db,
		mapper: mapper.NewGoalMapper(),
	}
}

func (r *QuizAttemptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuizAttemptRepositoryImpl) Create(ctx context.Context, attempt *entity.QuizAttempt) error {
	m := r.mapper.QuizAttemptToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.QuizAttemptToEntity(m)
	return nil
}

func (r *QuizAttemptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error) {
	var models []*model.QuizAttempt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QuizAttempt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.QuizAttemptToEntity(m)
	}
	return entities, nil
}
