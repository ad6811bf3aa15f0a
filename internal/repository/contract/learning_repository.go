package contract

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MasteryRepository interface {
	// Upsert writes one mastery record keyed by (student, course,
	// topic), inserting on first attempt.
	Upsert(ctx context.Context, record *entity.TopicMastery) error
	FindByStudentAndCourse(ctx context.Context, studentId, courseId uuid.UUID) ([]*entity.TopicMastery, error)
}

type TutorSessionRepository interface {
	SaveRecord(ctx context.Context, record *entity.TutorSessionRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSessionRecord, error)
}

type UploadRepository interface {
	Create(ctx context.Context, upload *entity.CourseUpload) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CourseUpload, error)
	FindBySession(ctx context.Context, sessionId string) ([]*entity.CourseUpload, error)
}
