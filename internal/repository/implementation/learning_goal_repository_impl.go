package implementation

import (
	"context"
	"errors"

	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/mapper"
	"ai-learning-partner-be/internal/model"
	"ai-learning-partner-be/internal/repository/contract"
	"ai-learning-partner-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningGoalRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GoalMapper
}

func NewLearningGoalRepository(db *gorm.DB) contract.LearningGoalRepository {
	return &LearningGoalRepositoryImpl{
		db:     db,
		mapper: mapper.NewGoalMapper(),
	}
}

func (r *LearningGoalRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LearningGoalRepositoryImpl) Create(ctx context.Context, goal *entity.LearningGoal) error {
	m := r.mapper.ToModel(goal)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*goal = *r.mapper.ToEntity(m)
	return nil
}

func (r *LearningGoalRepositoryImpl) Update(ctx context.Context, goal *entity.LearningGoal) error {
	m := r.mapper.ToModel(goal)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*goal = *r.mapper.ToEntity(m)
	return nil
}

func (r *LearningGoalRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LearningGoal, error) {
	var m model.LearningGoal
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LearningGoalRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LearningGoal, error) {
	var models []*model.LearningGoal
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.LearningGoal, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// UpdateProgress enforces monotone progress in the write itself: it only
// raises the counter and never past total_steps, so a stale or duplicate
// update cannot move progress backwards.
func (r *LearningGoalRepositoryImpl) UpdateProgress(ctx context.Context, goalId uuid.UUID, stepCount int) error {
	return r.db.WithContext(ctx).
		Model(&model.LearningGoal{}).
		Where("id = ?", goalId).
		Where("progress < ?", stepCount).
		Update("progress", gorm.Expr("LEAST(?, total_steps)", stepCount)).Error
}
