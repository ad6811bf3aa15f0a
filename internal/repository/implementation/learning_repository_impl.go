package implementation

import (
	"context"
	"errors"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/mapper"
	"ai-coursebuilder-be/internal/model"
	"ai-coursebuilder-be/internal/repository/contract"
	"ai-coursebuilder-be/internal/repository/scope"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMapper
}

func NewMasteryRepository(db *gorm.DB) contract.MasteryRepository {
	return &MasteryRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMapper(),
	}
}

func (r *MasteryRepositoryImpl) Upsert(ctx context.Context, record *entity.TopicMastery) error {
	m := r.mapper.MasteryToModel(record)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "topic_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "streak", "attempts", "last_updated"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*record = *r.mapper.MasteryToEntity(m)
	return nil
}

func (r *MasteryRepositoryImpl) FindByStudentAndCourse(ctx context.Context, studentId, courseId uuid.UUID) ([]*entity.TopicMastery, error) {
	var models []*model.TopicMastery
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentId, courseId).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]*entity.TopicMastery, len(models))
	for i, m := range models {
		records[i] = r.mapper.MasteryToEntity(m)
	}
	return records, nil
}

type TutorSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMapper
}

func NewTutorSessionRepository(db *gorm.DB) contract.TutorSessionRepository {
	return &TutorSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMapper(),
	}
}

func (r *TutorSessionRepositoryImpl) SaveRecord(ctx context.Context, record *entity.TutorSessionRecord) error {
	m := r.mapper.SessionToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *TutorSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSessionRecord, error) {
	var models []*model.TutorSessionRecord
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*entity.TutorSessionRecord, len(models))
	for i, m := range models {
		records[i] = r.mapper.SessionToEntity(m)
	}
	return records, nil
}

type UploadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LearningMapper
}

func NewUploadRepository(db *gorm.DB) contract.UploadRepository {
	return &UploadRepositoryImpl{
		db:     db,
		mapper: mapper.NewLearningMapper(),
	}
}

func (r *UploadRepositoryImpl) Create(ctx context.Context, upload *entity.CourseUpload) error {
	m := r.mapper.UploadToModel(upload)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*upload = *r.mapper.UploadToEntity(m)
	return nil
}

func (r *UploadRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&model.CourseUpload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "error": errMsg}).Error
}

func (r *UploadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseUpload, error) {
	var m model.CourseUpload
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UploadToEntity(&m), nil
}

func (r *UploadRepositoryImpl) FindBySession(ctx context.Context, sessionId string) ([]*entity.CourseUpload, error) {
	var models []*model.CourseUpload
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Scopes(scope.OrderByCreatedAsc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	uploads := make([]*entity.CourseUpload, len(models))
	for i, m := range models {
		uploads[i] = r.mapper.UploadToEntity(m)
	}
	return uploads, nil
}
