package implementation

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/mapper"
	"ai-coursebuilder-be/internal/model"
	"ai-coursebuilder-be/internal/repository/contract"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkEmbeddingMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkEmbeddingMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChunkEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ChunkEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.ChunkEmbedding{}).Error
}

func (r *ChunkEmbeddingRepositoryImpl) AssignCourse(ctx context.Context, sessionId string, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Where("session_id = ?", sessionId).
		Update("course_id", courseId).Error
}

func (r *ChunkEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkEmbedding, error) {
	var models []*model.ChunkEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChunkEmbedding{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *ChunkEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, courseId uuid.UUID) ([]*entity.ChunkEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.ChunkEmbedding

	// pgvector cosine distance, namespaced to the course.
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseId).
		Where("deleted_at IS NULL").
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, courseId uuid.UUID, threshold float64) ([]*contract.ScoredChunkEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		model.ChunkEmbedding
		Distance float64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Select("*, (embedding_value <=> ?) AS distance", pgvector.NewVector(embedding)).
		Where("course_id = ?", courseId).
		Where("deleted_at IS NULL").
		Order("distance ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var scored []*contract.ScoredChunkEmbedding
	for i := range rows {
		similarity := 1.0 - rows[i].Distance
		if similarity < threshold {
			continue
		}
		scored = append(scored, &contract.ScoredChunkEmbedding{
			Embedding:  r.mapper.ToEntity(&rows[i].ChunkEmbedding),
			Similarity: similarity,
		})
	}
	return scored, nil
}
