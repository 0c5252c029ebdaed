package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Name       string
	Status     string
	StorageKey string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
