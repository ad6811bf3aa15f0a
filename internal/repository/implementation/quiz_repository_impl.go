package implementation

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/mapper"
	"ai-coursebuilder-be/internal/model"
	"ai-coursebuilder-be/internal/repository/contract"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuizMapper
}

func NewQuizRepository(db *gorm.DB) contract.QuizRepository {
	return &QuizRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuizMapper(),
	}
}

func (r *QuizRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuizRepositoryImpl) CreateBulk(ctx context.Context, questions []*entity.QuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	models := make([]*model.QuizQuestion, len(questions))
	for i, q := range questions {
		models[i] = r.mapper.ToModel(q)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*questions[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *QuizRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.QuizQuestion{}).Error
}

func (r *QuizRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizQuestion, error) {
	var models []*model.QuizQuestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QuizRepositoryImpl) FindByTopic(ctx context.Context, courseId, topicId uuid.UUID, limit int) ([]*entity.QuizQuestion, error) {
	if limit <= 0 {
		limit = 3
	}
	var models []*model.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND topic_id = ?", courseId, topicId).
		Order("RANDOM()").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QuizRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QuizQuestion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QuizRepositoryImpl) CreateAttempt(ctx context.Context, attempt *entity.QuizAttempt) error {
	m := r.mapper.AttemptToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.AttemptToEntity(m)
	return nil
}

func (r *QuizRepositoryImpl) FindAttempts(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error) {
	var models []*model.QuizAttempt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	attempts := make([]*entity.QuizAttempt, len(models))
	for i, m := range models {
		attempts[i] = r.mapper.AttemptToEntity(m)
	}
	return attempts, nil
}
