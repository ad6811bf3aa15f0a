package contract

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Course, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Course, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ReplaceStructure swaps the course's units and topics in one
	// transaction so re-finalizing is deterministic.
	ReplaceStructure(ctx context.Context, courseId uuid.UUID, units []*entity.CourseUnit, topics []*entity.CourseTopic) error
	FindUnits(ctx context.Context, courseId uuid.UUID) ([]*entity.CourseUnit, error)
	FindTopics(ctx context.Context, courseId uuid.UUID) ([]*entity.CourseTopic, error)
}
