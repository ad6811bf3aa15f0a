package mapper

import (
	"time"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToEntity(e *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}
	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChunkEmbedding{
		Id:             e.Id,
		CourseId:       e.CourseId,
		SessionId:      e.SessionId,
		SourceFileId:   e.SourceFileId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *ChunkEmbeddingMapper) ToModel(e *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	out := &model.ChunkEmbedding{
		Id:             e.Id,
		CourseId:       e.CourseId,
		SessionId:      e.SessionId,
		SourceFileId:   e.SourceFileId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		DeletedAt:      deletedAt,
	}
	if e.UpdatedAt != nil {
		out.UpdatedAt = *e.UpdatedAt
	}
	return out
}

func (m *ChunkEmbeddingMapper) ToEntities(models []*model.ChunkEmbedding) []*entity.ChunkEmbedding {
	entities := make([]*entity.ChunkEmbedding, len(models))
	for i, e := range models {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
