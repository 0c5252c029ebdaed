package contract

import (
	"context"

	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
}
