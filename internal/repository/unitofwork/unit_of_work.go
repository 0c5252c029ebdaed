package unitofwork

import (
	"context"

	"ai-learning-partner-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatMessageRepository() contract.ChatMessageRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	LearningGoalRepository() contract.LearningGoalRepository
	QuizAttemptRepository() contract.QuizAttemptRepository
}
