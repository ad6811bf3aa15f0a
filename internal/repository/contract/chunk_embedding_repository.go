package contract

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunkEmbedding wraps ChunkEmbedding with its similarity score.
type ScoredChunkEmbedding struct {
	Embedding  *entity.ChunkEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ChunkEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	DeleteBySessionId(ctx context.Context, sessionId string) error
	// AssignCourse stamps a finalized course id onto every chunk the
	// construction session indexed.
	AssignCourse(ctx context.Context, sessionId string, courseId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilar runs cosine-distance search namespaced to one
	// course.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, courseId uuid.UUID) ([]*entity.ChunkEmbedding, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, courseId uuid.UUID, threshold float64) ([]*ScoredChunkEmbedding, error)
}
