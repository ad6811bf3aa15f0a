package implementation

import (
	"context"
	"errors"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/mapper"
	"ai-coursebuilder-be/internal/model"
	"ai-coursebuilder-be/internal/repository/contract"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CourseMapper
}

func NewCourseRepository(db *gorm.DB) contract.CourseRepository {
	return &CourseRepositoryImpl{
		db:     db,
		mapper: mapper.NewCourseMapper(),
	}
}

func (r *CourseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CourseRepositoryImpl) Create(ctx context.Context, course *entity.Course) error {
	m := r.mapper.ToModel(course)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*course = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseRepositoryImpl) Update(ctx context.Context, course *entity.Course) error {
	m := r.mapper.ToModel(course)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*course = *r.mapper.ToEntity(m)
	return nil
}

func (r *CourseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Course{}, id).Error
}

func (r *CourseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Course, error) {
	var m model.Course
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CourseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Course, error) {
	var models []*model.Course
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CourseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Course{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CourseRepositoryImpl) ReplaceStructure(ctx context.Context, courseId uuid.UUID, units []*entity.CourseUnit, topics []*entity.CourseTopic) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseId).Delete(&model.CourseTopic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseId).Delete(&model.CourseUnit{}).Error; err != nil {
			return err
		}
		for _, u := range units {
			m := r.mapper.UnitToModel(u)
			m.CourseId = courseId
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			*u = *r.mapper.UnitToEntity(m)
		}
		for _, t := range topics {
			m := r.mapper.TopicToModel(t)
			m.CourseId = courseId
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			*t = *r.mapper.TopicToEntity(m)
		}
		return nil
	})
}

func (r *CourseRepositoryImpl) FindUnits(ctx context.Context, courseId uuid.UUID) ([]*entity.CourseUnit, error) {
	var models []*model.CourseUnit
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseId).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	units := make([]*entity.CourseUnit, len(models))
	for i, m := range models {
		units[i] = r.mapper.UnitToEntity(m)
	}
	return units, nil
}

func (r *CourseRepositoryImpl) FindTopics(ctx context.Context, courseId uuid.UUID) ([]*entity.CourseTopic, error) {
	var models []*model.CourseTopic
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseId).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	topics := make([]*entity.CourseTopic, len(models))
	for i, m := range models {
		topics[i] = r.mapper.TopicToEntity(m)
	}
	return topics, nil
}
