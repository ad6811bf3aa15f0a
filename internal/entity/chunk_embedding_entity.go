package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkEmbedding is one embedded content chunk, namespaced per course.
type ChunkEmbedding struct {
	Id             uuid.UUID
	CourseId       uuid.UUID
	SessionId      string
	SourceFileId   string
	Document       string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
